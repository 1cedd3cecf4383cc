package flatfile_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/shapestone/shape-flatfile/pkg/flatfile"
)

// FuzzRead checks that Read never panics and that a small buffer yields the same
// rows as a large one whenever both succeed.
// Run with: go test -fuzz=FuzzRead -fuzztime=30s ./pkg/flatfile
func FuzzRead(f *testing.F) {
	seeds := []string{
		"",
		"a",
		"a,b,c\n",
		"a,b\nc,d",
		"\"quoted\"",
		"\"with,comma\"",
		"\"with\"\"quote\"",
		"\"multi\nline\"",
		"\r\n",
		"a\r\nb\n\rc",
		",,",
		"\"\"\"\"",
		"# comment\n#another\nx,y\n",
		"  padded  , \"kept \" \n",
		"1\r2\r3\n",
	}
	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, input string) {
		large, errLarge := flatfile.ReadString(input, flatfile.DefaultConfig())

		cfg := flatfile.DefaultConfig()
		cfg.SetTrimResults(true)
		cfg.SetStripControlChars(true)
		cfg.SetEscapeChar(flatfile.CharOf('\\'))
		_, _ = flatfile.ReadString(input, cfg)

		small := flatfile.DefaultConfig()
		if err := small.SetMaxBufferSize(8); err != nil {
			t.Fatal(err)
		}
		got, err := flatfile.ReadString(input, small)
		if errors.Is(err, flatfile.ErrBufferTooSmall) || errLarge != nil || err != nil {
			return
		}
		if !reflect.DeepEqual(got, large) {
			t.Errorf("buffer 8 rows = %q, buffer %d rows = %q", got, flatfile.DefaultMaxBufferSize, large)
		}
	})
}
