package format

// Align4 returns n aligned up to the next word boundary.
//
// Example:
//
//	Align4(0) = 0
//	Align4(1) = 4
//	Align4(4) = 4
//	Align4(5) = 8
func Align4(n int) int {
	return (n + WordSize - 1) &^ (WordSize - 1)
}

// IsAligned reports whether n sits on a word boundary.
func IsAligned(n int) bool {
	return n&(WordSize-1) == 0
}
