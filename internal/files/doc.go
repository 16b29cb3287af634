// Package files provides the file system operations used to persist
// pipeline outputs.
//
// Outputs are written through Manager.WriteAtomic: the content goes to a
// temporary file in the target directory which is renamed over the target
// only after every byte has been written and synced. A failed run therefore
// never leaves a truncated output behind and never clobbers the output of a
// previous good run.
//
//	manager := files.NewManager(paths)
//	err := manager.WriteAtomic("data/obesity_data_cleaned.csv", func(w io.Writer) error {
//	    return writeTable(w, table)
//	})
//
// Manager.Stage splits the same write in two. The returned StagedFile is
// renamed over its target by Commit or removed by Discard, which lets a run
// prepare several outputs before replacing any of them.
package files
