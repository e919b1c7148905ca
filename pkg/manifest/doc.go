// Package manifest extracts git dependency declarations from package
// manifests and failing package URLs from backend error messages.
//
// Both operations are deliberately lightweight pattern matches over raw text
// rather than full document parses. A manifest that does not contain a
// "gitdependencies" object simply has no git dependencies; malformed entries
// inside the object are skipped and reported, never fatal.
//
// # Manifest Shape
//
// The dependency block is an object literal keyed by package name whose
// values are source URLs:
//
//	{
//	  "name": "com.example.tools",
//	  "gitdependencies": {
//	    "com.example.core": "https://github.com/example/core.git",
//	    "com.example.ui": "https://github.com/example/ui.git"
//	  }
//	}
//
// # Usage
//
//	block := manifest.ExtractDependencyBlock(text)
//	deps, err := manifest.ParseDependencyEntries(block)
//	if err != nil {
//	    // some entries were skipped; deps still holds the valid ones
//	}
//
// Backend error messages carry the failing URL in square brackets:
//
//	url, ok := manifest.ExtractFailedPackageURL("Cannot find package [https://example.com/pkg.git]")
package manifest
