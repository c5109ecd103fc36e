package externalapi

import "encoding/hex"

// DomainHashSize of array used to store hashes.
const DomainHashSize = 32

// DomainHash is the domain representation of a Hash
type DomainHash [DomainHashSize]byte

// String returns the Hash as the hexadecimal string of the hash.
func (hash DomainHash) String() string {
	return hex.EncodeToString(hash[:])
}

// Clone clones the hash
func (hash *DomainHash) Clone() *DomainHash {
	hashClone := *hash
	return &hashClone
}

// If this doesn't compile, it means the type definition has been changed, so it's
// an indication to update Equal and Clone accordingly.
var _ DomainHash = [DomainHashSize]byte{}

// Equal returns whether hash equals to other
func (hash *DomainHash) Equal(other *DomainHash) bool {
	if hash == nil || other == nil {
		return hash == other
	}

	return *hash == *other
}

// HashesEqual returns whether the given hash slices are equal.
func HashesEqual(a, b []*DomainHash) bool {
	if len(a) != len(b) {
		return false
	}

	for i, hash := range a {
		if !hash.Equal(b[i]) {
			return false
		}
	}
	return true
}

// CloneHashes returns a clone of the given hashes slice
func CloneHashes(hashes []*DomainHash) []*DomainHash {
	clone := make([]*DomainHash, len(hashes))
	for i, hash := range hashes {
		clone[i] = hash.Clone()
	}
	return clone
}

// DomainHashesToStrings returns a slice of strings representing the hashes in the given slice of hashes
func DomainHashesToStrings(hashes []*DomainHash) []string {
	strings := make([]string, len(hashes))
	for i, hash := range hashes {
		strings[i] = hash.String()
	}

	return strings
}

// IsZero reports whether hash is the all-zero hash, used as the genesis
// block's previous-hash sentinel.
func (hash *DomainHash) IsZero() bool {
	return *hash == DomainHash{}
}

// HashFromBytes builds a DomainHash from a byte slice, which must be
// exactly DomainHashSize long.
func HashFromBytes(b []byte) (DomainHash, bool) {
	var h DomainHash
	if len(b) != DomainHashSize {
		return h, false
	}
	copy(h[:], b)
	return h, true
}

// Less reports whether a sorts before b lexicographically, used to order
// transaction hashes and validate block-parent ordering invariants.
func Less(a, b *DomainHash) bool {
	for i := 0; i < DomainHashSize; i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// DomainPublicKey is a 32-byte Ed25519-family curve point.
type DomainPublicKey [32]byte

// String returns the public key as a hexadecimal string.
func (k DomainPublicKey) String() string { return hex.EncodeToString(k[:]) }

// DomainKeyImage is a 32-byte Ed25519-family curve point that uniquely
// identifies a spent one-time output and prevents it from being spent
// twice.
type DomainKeyImage [32]byte

// String returns the key image as a hexadecimal string.
func (k DomainKeyImage) String() string { return hex.EncodeToString(k[:]) }

// IsZero reports whether k is the all-zero key image.
func (k DomainKeyImage) IsZero() bool { return k == DomainKeyImage{} }
