// Package matching ranks corpus records against an extracted fingerprint.
//
// Scoring combines three signals: bitwise fingerprint similarity, a
// perceptual-hash proximity bonus, and a temporal bonus for records
// registered close to the query. The fingerprint similarity dominates;
// the other two only reorder near-ties.
package matching
