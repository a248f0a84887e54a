// Package overlay attaches named resources to the end of an existing file
// without disturbing the file's own content.
//
// A host file (typically an executable) keeps every original byte. Resources
// are appended after it as data blocks, followed by a table describing them
// and a fixed-size footer:
//
//	[host content][data block]...[data block][table][footer]
//
// The footer is found by reading backwards from the end of the file, so the
// host's own format is never parsed. Each resource carries a SHA-256 of its
// raw bytes and may be stored zstd-compressed (levels 1-9) or verbatim
// (level 0).
//
// # Quick Start
//
// Attach, list and extract resources:
//
//	err := overlay.Add("./app", archive, "Archive", overlay.AddWithLevel(5))
//	if err != nil {
//	    return err
//	}
//	summaries, err := overlay.List("./app")
//	err = overlay.Export("./app", "Archive", "./archive.zip")
//
// Remove a resource; the remaining blocks are compacted so the file shrinks
// by exactly the removed block and its table record:
//
//	err = overlay.Remove("./app", "Archive")
//
// # Editors
//
// The package-level functions use a default [Editor]. Create one with [New]
// to set limits or a logger:
//
//	ed := overlay.New(
//	    overlay.WithLogger(logger),
//	    overlay.WithMaxResourceSize(64<<20),
//	)
//
// # Safety
//
// Mutations never modify the host in place. The new file is written to a
// temporary file in the destination directory, synced, re-read and checked,
// and only then renamed over the destination. Exports are verified twice:
// once after decompression and again by re-reading the written output.
package overlay
