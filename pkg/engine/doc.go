// Package engine orchestrates the similarity store: ingestion (identifier →
// embed → blob → vector row, in that order) and querying (embed → index
// search → derived blob references).
//
// The write order inside one ingestion is a strict invariant, not an
// optimization: a vector row is only committed after its blob is durable,
// so the index can never reference a blob that does not exist. The reverse
// inconsistency, a blob with no index entry, is tolerated: it is invisible
// to the query path and recoverable by a reconciliation sweep.
package engine
