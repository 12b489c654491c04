// Package kernels holds the static reference table of common Jupyter kernel
// configurations. The table involves no file access; actual kernel
// availability depends on what is installed on the target system.
package kernels

import "github.com/starford/raido/internal/notebook"

// Common returns the well-known kernel descriptors, in display order.
func Common() []notebook.KernelSpec {
	return []notebook.KernelSpec{
		{Name: "python3", DisplayName: "Python 3", Language: "python"},
		{Name: "python2", DisplayName: "Python 2", Language: "python"},
		{Name: "ir", DisplayName: "R", Language: "R"},
		{Name: "julia-1.9", DisplayName: "Julia 1.9", Language: "julia"},
		{Name: "javascript", DisplayName: "JavaScript (Node.js)", Language: "javascript"},
		{Name: "bash", DisplayName: "Bash", Language: "bash"},
		{Name: "scala", DisplayName: "Scala", Language: "scala"},
		{Name: "rust", DisplayName: "Rust", Language: "rust"},
	}
}
