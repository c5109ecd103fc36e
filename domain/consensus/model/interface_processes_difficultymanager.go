package model

// DifficultyManager resolves the required difficulty for the block that
// would extend a chain tip, switching between the legacy trimmed-mean
// window and the LWMA window at the height the active Currency configures.
type DifficultyManager interface {
	// RequiredDifficulty returns the difficulty the next block after
	// tipIndex must satisfy, given the timestamps and cumulative
	// difficulties of the window of blocks ending at tipIndex, oldest
	// first.
	RequiredDifficulty(tipIndex uint32, timestamps []uint64, cumulativeDifficulties []uint64) (uint64, error)
}
