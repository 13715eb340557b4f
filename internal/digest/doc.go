// Package digest computes deterministic content digests for byte streams.
//
// Digests identify documents and embedded sub-streams by content rather
// than by location. The digester streams input through the selected hash,
// so memory stays bounded regardless of stream length.
package digest
