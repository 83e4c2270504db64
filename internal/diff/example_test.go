// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package diff_test

import (
	"fmt"

	"github.com/jeranaias/loom-tui/internal/diff"
)

func ExampleParse() {
	payload := `--- a/main.go
+++ b/main.go
@@ -1,3 +1,4 @@
 package main
+import "fmt"
 
 func main() {}
`

	d, ok := diff.Parse(payload)
	if !ok {
		fmt.Println("not a diff")
		return
	}

	fmt.Println(d.FilePath)
	fmt.Println(d.Summary())

	// Output:
	// main.go
	// Modified +1
}

func ExampleIsUnifiedDiff() {
	fmt.Println(diff.IsUnifiedDiff("@@ -1,2 +1,2 @@\n-a\n+b"))
	fmt.Println(diff.IsUnifiedDiff("a plus here: +1"))

	// Output:
	// true
	// false
}

func ExampleDiffLineType_Prefix() {
	// Show diff line prefixes
	fmt.Println("Added:", diff.DiffLineAdded.Prefix())
	fmt.Println("Removed:", diff.DiffLineRemoved.Prefix())
	fmt.Println("Context:", diff.DiffLineContext.Prefix())

	// Output:
	// Added: +
	// Removed: -
	// Context:
}

func ExampleDiff_Hunks() {
	payload := `@@ -5,2 +5,3 @@
 five
+five-and-a-half
 six
`

	d, _ := diff.Parse(payload)
	for i, hunk := range d.Hunks {
		fmt.Printf("Hunk %d: @@ -%d,%d +%d,%d @@\n",
			i+1, hunk.OldStart, hunk.OldCount, hunk.NewStart, hunk.NewCount)
	}

	// Output:
	// Hunk 1: @@ -5,2 +5,3 @@
}
