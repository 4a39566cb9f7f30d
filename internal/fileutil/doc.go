// Package fileutil lists the files a scan will classify.
//
// ScanDirectory walks a root directory and returns the absolute path of every
// non-directory entry beneath it, sorted so that runs over the same tree
// submit files in the same order. Problems below the root (an unreadable
// subdirectory, a dangling entry) are collected in ScanResult.Errors and the
// walk continues; only an unusable root is fatal.
//
// Hidden directories are descended into unless IncludeHidden is false, which
// matches a plain recursive listing. Symbolic links to directories are not
// followed, so cyclic links cannot make a walk run forever; links to files
// are listed like regular files.
//
// Basic recursive listing:
//
//	result, err := fileutil.ScanDirectory(root, fileutil.DefaultScanOptions())
//	if err != nil {
//	    return err
//	}
//	for _, path := range result.Files {
//	    fmt.Println(path)
//	}
//
// Skipping VCS metadata and hidden directories:
//
//	opts := fileutil.DefaultScanOptions()
//	opts.IncludeHidden = false
//	opts.ExcludeDirs = []string{"node_modules"}
//	result, err := fileutil.ScanDirectory(root, opts)
package fileutil
