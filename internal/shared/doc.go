// Package shared groups code used across tabprep's packages that belongs to
// no single layer. Today that is the testutil subpackage:
//
//	- WriteFile, WriteWorkbook and ReadWorkbook build CSV and xlsx fixtures
//	  in t.TempDir()
//	- NewTestLogger returns a slog logger backed by a BufferedSlogHandler so
//	  tests can assert on log records with AssertLogContains and AssertLogAttr
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    logger, handler := testutil.NewTestLogger(t)
//	    path := testutil.WriteFile(t, t.TempDir(), "data.csv", "a,b\n1,2\n")
//	    // ...
//	    testutil.AssertNoErrors(t, handler)
//	}
package shared
