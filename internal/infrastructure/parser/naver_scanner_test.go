package parser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"NewsAnalyzer/internal/scanner"
)

const sectionPage = `
<ul>
  <li><div class="sa_item_inner">
    <div class="sa_thumb"><img src="https://imgnews.example/thumb1.jpg"></div>
    <a class="sa_text_title _NLOG_IMPRESSION" href="/mnews/article/001/0001"><strong>금리 동결</strong></a>
  </div></li>
  <li><div class="sa_item_inner">
    <a class="sa_text_title _NLOG_IMPRESSION" href="https://n.news.naver.com/mnews/article/002/0002">반도체 수출</a>
  </div></li>
  <li><div class="sa_item_inner">
    <a class="sa_text_title _NLOG_IMPRESSION" href="/mnews/article/001/0001">금리 동결 (dup)</a>
  </div></li>
  <li><div class="sa_item_inner"><span>no link</span></div></li>
</ul>`

func TestExtractSectionItems(t *testing.T) {
	t.Parallel()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(sectionPage))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}

	refs := extractSectionItems(doc, "https://news.naver.com/section/101", "101")
	if len(refs) != 3 {
		t.Fatalf("expected 3 refs, got %d", len(refs))
	}

	first := refs[0]
	if first.URL != "https://news.naver.com/mnews/article/001/0001" {
		t.Fatalf("unexpected url: %s", first.URL)
	}
	if first.Title != "금리 동결" {
		t.Fatalf("unexpected title: %s", first.Title)
	}
	if first.Thumbnail != "https://imgnews.example/thumb1.jpg" {
		t.Fatalf("unexpected thumbnail: %s", first.Thumbnail)
	}
	if first.Section != "101" {
		t.Fatalf("unexpected section: %s", first.Section)
	}
	if refs[1].Thumbnail != "" {
		t.Fatalf("expected empty thumbnail, got %s", refs[1].Thumbnail)
	}
}

func TestSectionURL(t *testing.T) {
	t.Parallel()

	if got := sectionURL(scanner.Category{Name: "105"}); got != "https://news.naver.com/section/105" {
		t.Fatalf("unexpected default url: %s", got)
	}
	if got := sectionURL(scanner.Category{Name: "105", URL: "http://mirror/105"}); got != "http://mirror/105" {
		t.Fatalf("explicit url should win, got %s", got)
	}
}

func TestNaverScannerScan(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte(sectionPage))
	}))
	defer server.Close()

	sc := NewNaverScanner(server.Client(), nil)
	req := scanner.Request{
		SiteName: "naver",
		Limit:    2,
		Categories: []scanner.Category{
			{Name: "101", URL: server.URL + "/section/101"},
		},
	}

	refs, err := sc.Scan(context.Background(), req)
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("expected 2 refs after limit, got %d", len(refs))
	}
	if !strings.HasPrefix(refs[0].URL, server.URL) {
		t.Fatalf("relative link should resolve against the page, got %s", refs[0].URL)
	}
}

func TestNaverScannerRejectsBadStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	sc := NewNaverScanner(server.Client(), nil)
	_, err := sc.Scan(context.Background(), scanner.Request{
		SiteName:   "naver",
		Categories: []scanner.Category{{Name: "100", URL: server.URL}},
	})
	if err == nil {
		t.Fatalf("expected error for 502 response")
	}
}

func TestNaverScannerKeepsHealthySections(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/section/104" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(sectionPage))
	}))
	defer server.Close()

	sc := NewNaverScanner(server.Client(), nil)
	refs, err := sc.Scan(context.Background(), scanner.Request{
		SiteName: "naver",
		Categories: []scanner.Category{
			{Name: "100", URL: server.URL + "/section/100"},
			{Name: "104", URL: server.URL + "/section/104"},
		},
	})
	if err == nil || !strings.Contains(err.Error(), "section 104") {
		t.Fatalf("expected error naming section 104, got %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("expected refs of section 100 to survive, got %d", len(refs))
	}
	for _, ref := range refs {
		if ref.Section != "100" {
			t.Fatalf("unexpected section in %+v", ref)
		}
	}
}
