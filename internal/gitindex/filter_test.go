package gitindex

import (
	"reflect"
	"testing"
)

func TestFilterVendored(t *testing.T) {
	files := []string{
		"app/Models/User.php",
		"vendor/autoload.php",
		"node_modules/eslint/bin/eslint.js",
		"storage/logs/laravel.log",
		"resources/js/app.js",
		".git/hooks/pre-commit",
	}
	got := FilterVendored(files)
	want := []string{"app/Models/User.php", "resources/js/app.js"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("filter mismatch: %+v", got)
	}
}

func TestFilterVendored_TopLevelOnly(t *testing.T) {
	// Nested vendor directories are third-party too; the patterns are
	// unanchored and match at any depth.
	got := FilterVendored([]string{"tools/vendor/lib.php", "src/vendors.php"})
	if !reflect.DeepEqual(got, []string{"src/vendors.php"}) {
		t.Fatalf("filter mismatch: %+v", got)
	}
}

func TestFilterVendored_Empty(t *testing.T) {
	if got := FilterVendored(nil); len(got) != 0 {
		t.Fatalf("expected empty: %+v", got)
	}
}
