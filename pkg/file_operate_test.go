package pkg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func TestCheckFileExist(t *testing.T) {
	convey.Convey("existing and missing files", t, func() {
		path := filepath.Join(t.TempDir(), "a.pp")
		convey.So(os.WriteFile(path, []byte("a: 1"), 0o644), convey.ShouldBeNil)
		ok, err := CheckFileExist(path)
		convey.So(err, convey.ShouldBeNil)
		convey.So(ok, convey.ShouldBeTrue)
		ok, err = CheckFileExist(path + ".missing")
		convey.So(err, convey.ShouldBeNil)
		convey.So(ok, convey.ShouldBeFalse)
	})
}

func TestReadText(t *testing.T) {
	convey.Convey("UTF-16 files with a BOM are decoded", t, func() {
		// "{a:1}" in UTF-16LE with BOM
		data := []byte{0xFF, 0xFE, '{', 0, 'a', 0, ':', 0, '1', 0, '}', 0}
		path := filepath.Join(t.TempDir(), "utf16.pp")
		convey.So(os.WriteFile(path, data, 0o644), convey.ShouldBeNil)
		text, err := ReadText(path)
		convey.So(err, convey.ShouldBeNil)
		convey.So(text, convey.ShouldEqual, "{a:1}")
	})

	convey.Convey("a UTF-8 BOM is dropped", t, func() {
		text, err := DecodeBytes([]byte("\xEF\xBB\xBFkey: värde"))
		convey.So(err, convey.ShouldBeNil)
		convey.So(text, convey.ShouldEqual, "key: värde")
	})

	convey.Convey("missing files are an error", t, func() {
		_, err := ReadText(filepath.Join(t.TempDir(), "nope"))
		convey.So(err, convey.ShouldNotBeNil)
	})
}
