package unidiff_test

import "strings"

func joinLines(lines ...string) string {
	return strings.Join(lines, "\n")
}

var plainFileDiff = joinLines(
	"diff --git a/main.go b/main.go",
	"index 83db48f..bf269f4 100644",
	"--- a/main.go",
	"+++ b/main.go",
	"@@ -1,4 +1,5 @@",
	" package main",
	" ",
	`+import "fmt"`,
	" func main() {",
	`-	println("hi")`,
	`+	fmt.Println("hi")`,
	"@@ -10,3 +11,4 @@ func helper() {",
	" 	a := 1",
	"+	b := 2",
	" 	return",
	" }",
)

var combinedFileDiff = joinLines(
	"diff --cc conflict.txt",
	"index 1234567,89abcde..0000000",
	"--- a/conflict.txt",
	"+++ b/conflict.txt",
	"@@@ -1,3 -1,3 +1,7 @@@",
	"  line one",
	"++<<<<<<< HEAD",
	" +ours",
	"++=======",
	"+ theirs",
	"++>>>>>>> feature",
	"  line three",
)

var renamedFileDiff = joinLines(
	"diff --git a/old_name.txt b/new_name.txt",
	"similarity index 90%",
	"rename from old_name.txt",
	"rename to new_name.txt",
	"index 1111111..2222222 100644",
	"--- a/old_name.txt",
	"+++ b/new_name.txt",
	"@@ -1,2 +1,2 @@",
	" keep",
	"-before",
	"+after",
)

var binaryFileDiff = joinLines(
	"diff --git a/logo.png b/logo.png",
	"index 0a1b2c3..4d5e6f7 100644",
	"Binary files a/logo.png and b/logo.png differ",
)

var modeChangeFileDiff = joinLines(
	"diff --git a/run.sh b/run.sh",
	"old mode 100644",
	"new mode 100755",
	"index 3b18e51..e69de29",
	"--- a/run.sh",
	"+++ b/run.sh",
	"@@ -1 +1 @@",
	"-echo hi",
	"+echo hello",
)

var newFileDiff = joinLines(
	"diff --git a/notes.md b/notes.md",
	"new file mode 100644",
	"index 0000000..5716ca5",
	"--- /dev/null",
	"+++ b/notes.md",
	"@@ -0,0 +1,2 @@",
	"+first",
	"+second",
	`\ No newline at end of file`,
)

// threeFileDiff is a merge-conflict state: one combined block between two
// plain blocks, four hunks in total.
var threeFileDiff = joinLines(plainFileDiff, combinedFileDiff, renamedFileDiff) + "\n"
