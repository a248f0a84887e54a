package overlaytype

// Compression levels accepted by the codec.
const (
	// LevelNone stores resources verbatim.
	LevelNone = 0

	// LevelDefault is used when no level is requested.
	LevelDefault = 1

	// LevelMax is the highest (slowest, smallest) level.
	LevelMax = 9
)

// ValidLevel reports whether level is within LevelNone..LevelMax.
func ValidLevel(level int) bool {
	return level >= LevelNone && level <= LevelMax
}
