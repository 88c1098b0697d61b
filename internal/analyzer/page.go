package analyzer

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PageInfo is descriptive metadata pulled from the posting body. It is never
// used for scoring.
type PageInfo struct {
	Title     string `json:"title,omitempty"`
	Canonical string `json:"canonical,omitempty"`
}

// ExtractPageInfo reads the document title and canonical link. Bodies that are
// not HTML yield an empty PageInfo.
func ExtractPageInfo(body []byte) PageInfo {
	if len(body) == 0 {
		return PageInfo{}
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return PageInfo{}
	}

	info := PageInfo{
		Title: strings.Join(strings.Fields(doc.Find("head title").First().Text()), " "),
	}
	if info.Title == "" {
		if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
			info.Title = strings.TrimSpace(og)
		}
	}
	if href, ok := doc.Find(`link[rel="canonical"]`).Attr("href"); ok {
		info.Canonical = strings.TrimSpace(href)
	}
	return info
}
