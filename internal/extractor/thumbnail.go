package extractor

import (
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/multiki/internal/domain"
)

// isImageURL reports whether link's path ends in an image extension.
// Query strings and fragments are ignored.
func isImageURL(link string) bool {
	p := link
	if u, err := url.Parse(link); err == nil {
		p = u.Path
	}
	ext := strings.ToLower(path.Ext(p))
	for _, e := range domain.ImageExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// thumbConvention is a per-item image naming scheme learned from the page:
// images live in dir and are named after the media file (or its stem) plus ext.
type thumbConvention struct {
	dir     *url.URL
	useStem bool
	ext     string
}

func (c thumbConvention) build(mediaURL string) string {
	u, err := url.Parse(mediaURL)
	if err != nil {
		return ""
	}
	seg := path.Base(u.EscapedPath())
	if c.useStem {
		seg = strings.TrimSuffix(seg, path.Ext(seg))
	}
	ref, err := url.Parse(seg + c.ext)
	if err != nil {
		return ""
	}
	return c.dir.ResolveReference(ref).String()
}

// attachThumbnails fills ThumbnailURL on records that have none. A naming
// convention seen in the page's <img> tags is applied to every record;
// otherwise each record looks for an image link sharing its base name.
// Records with no match keep an empty thumbnail.
func attachThumbnails(text string, base *url.URL, records []domain.Record) {
	doc, ok := parseDocument(text)
	if !ok {
		return
	}

	var embedded []string
	doc.Find("img[src]").Each(func(_ int, img *goquery.Selection) {
		src, _ := img.Attr("src")
		if abs, ok := resolveURL(base, src); ok && isImageURL(abs) {
			embedded = append(embedded, abs)
		}
	})

	if conv, ok := detectConvention(embedded, records); ok {
		for i := range records {
			if records[i].ThumbnailURL == "" {
				records[i].ThumbnailURL = conv.build(records[i].MediaURL)
			}
		}
		return
	}

	// Image links by decoded file name, first occurrence wins.
	byName := make(map[string]string)
	add := func(abs string) {
		name := fileName(abs)
		if _, seen := byName[name]; !seen {
			byName[name] = abs
		}
	}
	for _, abs := range embedded {
		add(abs)
	}
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if abs, ok := resolveURL(base, href); ok && isImageURL(abs) {
			add(abs)
		}
	})

	for i := range records {
		if records[i].ThumbnailURL != "" {
			continue
		}
		file := fileName(records[i].MediaURL)
		for _, ext := range domain.ImageExtensions {
			if img, ok := byName[stem(file)+ext]; ok {
				records[i].ThumbnailURL = img
				break
			}
			if img, ok := byName[file+ext]; ok {
				records[i].ThumbnailURL = img
				break
			}
		}
	}
}

func detectConvention(images []string, records []domain.Record) (thumbConvention, bool) {
	for _, img := range images {
		u, err := url.Parse(img)
		if err != nil {
			continue
		}
		name := fileName(img)
		ext := path.Ext(name)
		for _, r := range records {
			file := fileName(r.MediaURL)
			var useStem bool
			switch strings.TrimSuffix(name, ext) {
			case file:
			case stem(file):
				useStem = true
			default:
				continue
			}
			dir := *u
			dir.Path = path.Dir(u.Path)
			if !strings.HasSuffix(dir.Path, "/") {
				dir.Path += "/"
			}
			dir.RawPath = ""
			dir.RawQuery = ""
			dir.Fragment = ""
			return thumbConvention{dir: &dir, useStem: useStem, ext: ext}, true
		}
	}
	return thumbConvention{}, false
}
