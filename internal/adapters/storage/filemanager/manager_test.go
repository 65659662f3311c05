package filemanager_test

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/gvera/internal/adapters/storage/filemanager"
	. "github.com/smartystreets/goconvey/convey"
)

// uploads builds the multipart file structure net/http would hand us.
func uploads(files map[string][2]string) map[string][]*multipart.FileHeader {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for field, nc := range files {
		part, err := w.CreateFormFile(field, nc[0])
		if err != nil {
			panic(err)
		}
		if _, err := part.Write([]byte(nc[1])); err != nil {
			panic(err)
		}
	}
	if err := w.Close(); err != nil {
		panic(err)
	}
	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	if err != nil {
		panic(err)
	}
	return form.File
}

func TestBuildFilesFromSource(t *testing.T) {
	Convey("Given an uploaded-file structure", t, func() {
		src := uploads(map[string][2]string{
			"avatar": {"../../me.txt", "hello"},
			"cv":     {"resume.pdf", "%PDF-1.4"},
		})
		m := filemanager.New()

		Convey("When building without a rename", func() {
			c, err := m.BuildFilesFromSource(src, "")

			Convey("Then files are keyed by property with cleaned names", func() {
				So(err, ShouldBeNil)
				So(c.Len(), ShouldEqual, 2)
				f, err := c.ByName("avatar")
				So(err, ShouldBeNil)
				So(f.Name, ShouldEqual, "me.txt")
				So(f.Property, ShouldEqual, "avatar")
				So(f.Size, ShouldEqual, 5)
			})
		})

		Convey("When building with a rename", func() {
			c, _ := m.BuildFilesFromSource(src, "profile")

			Convey("Then the original extension is kept", func() {
				f, err := c.ByName("cv")
				So(err, ShouldBeNil)
				So(f.Name, ShouldEqual, "profile.pdf")
			})
		})

		Convey("When looking up a missing property", func() {
			c, _ := m.BuildFilesFromSource(src, "")
			_, err := c.ByName("nope")

			Convey("Then it fails with ErrNotFound naming the uploaded properties", func() {
				So(errors.Is(err, filemanager.ErrNotFound), ShouldBeTrue)
				So(err.Error(), ShouldEndWith, `"nope" (uploaded: avatar, cv)`)
			})
		})
	})
}

func TestSaveToFileSystem(t *testing.T) {
	Convey("Given a manager rooted at a temp dir", t, func() {
		root := t.TempDir()
		So(os.Mkdir(filepath.Join(root, "docs"), 0o755), ShouldBeNil)
		ctx := context.Background()

		src := uploads(map[string][2]string{
			"note": {"note.txt", "plain text body"},
			"doc":  {"doc.pdf", "%PDF-1.4 fake"},
		})

		Convey("When saving an allowed type", func() {
			m := filemanager.New(filemanager.WithRoot(root), filemanager.WithAllowedTypes([]string{"text/plain; charset=utf-8"}))
			c, _ := m.BuildFilesFromSource(src, "")
			f, _ := c.ByName("note")
			ok, err := m.SaveToFileSystem(ctx, "docs", f)

			Convey("Then the file lands in the directory", func() {
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
				data, rerr := os.ReadFile(filepath.Join(root, "docs", "note.txt"))
				So(rerr, ShouldBeNil)
				So(string(data), ShouldEqual, "plain text body")
				So(f.ContentType, ShouldEqual, "text/plain; charset=utf-8")
			})

			Convey("And no temp files are left behind", func() {
				entries, _ := os.ReadDir(filepath.Join(root, "docs"))
				So(len(entries), ShouldEqual, 1)
			})
		})

		Convey("When saving a type outside the allow-list", func() {
			m := filemanager.New(filemanager.WithRoot(root), filemanager.WithAllowedTypes([]string{"image/png"}))
			c, _ := m.BuildFilesFromSource(src, "")
			f, _ := c.ByName("doc")
			ok, err := m.SaveToFileSystem(ctx, "docs", f)

			Convey("Then it fails with ErrInvalidFileType", func() {
				So(ok, ShouldBeFalse)
				So(errors.Is(err, filemanager.ErrInvalidFileType), ShouldBeTrue)
			})
		})

		Convey("When the directory does not exist", func() {
			m := filemanager.New(filemanager.WithRoot(root))
			c, _ := m.BuildFilesFromSource(src, "")
			f, _ := c.ByName("note")
			_, err := m.SaveToFileSystem(ctx, "missing", f)

			Convey("Then it fails with ErrNotFound", func() {
				So(errors.Is(err, filemanager.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When the directory climbs out of the root", func() {
			m := filemanager.New(filemanager.WithRoot(root))
			c, _ := m.BuildFilesFromSource(src, "")
			f, _ := c.ByName("note")
			ok, err := m.SaveToFileSystem(ctx, "../docs", f)

			Convey("Then it is clamped to the root", func() {
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
				_, serr := os.Stat(filepath.Join(root, "docs", "note.txt"))
				So(serr, ShouldBeNil)
			})
		})

		Convey("When the file is nil", func() {
			m := filemanager.New(filemanager.WithRoot(root))
			_, err := m.SaveToFileSystem(ctx, "docs", nil)

			Convey("Then it fails with ErrNotFound", func() {
				So(errors.Is(err, filemanager.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When the context is already cancelled", func() {
			m := filemanager.New(filemanager.WithRoot(root))
			c, _ := m.BuildFilesFromSource(src, "")
			f, _ := c.ByName("note")
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := m.SaveToFileSystem(cctx, "docs", f)

			Convey("Then the context error is returned", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})
}
