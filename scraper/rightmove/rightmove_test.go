package rightmove

import (
	"net/url"
	"testing"

	"property-recommender/config"
)

func TestPageURLs(t *testing.T) {
	pages, err := PageURLs(config.DefaultCrawlURL, 3)
	if err != nil {
		t.Fatalf("PageURLs: %v", err)
	}
	if len(pages) != 3 {
		t.Fatalf("got %d pages, want 3", len(pages))
	}

	wantIndex := []string{"", "24", "48"}
	for i, p := range pages {
		u, err := url.Parse(p)
		if err != nil {
			t.Fatalf("page %d: %v", i, err)
		}
		if got := u.Query().Get("index"); got != wantIndex[i] {
			t.Errorf("page %d index: got %q, want %q", i, got, wantIndex[i])
		}
		if got := u.Query().Get("locationIdentifier"); got != "REGION^93922" {
			t.Errorf("page %d lost locationIdentifier: %q", i, got)
		}
	}
}

func TestPageURLsRejectsRelative(t *testing.T) {
	if _, err := PageURLs("/property-for-sale/find.html", 1); err == nil {
		t.Error("expected error for relative search URL")
	}
}

func TestPageURLsAtLeastOne(t *testing.T) {
	pages, err := PageURLs("https://www.rightmove.co.uk/find.html?index=48", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(pages) != 1 {
		t.Fatalf("got %d pages, want 1", len(pages))
	}
	if u, _ := url.Parse(pages[0]); u.Query().Has("index") {
		t.Errorf("first page should drop index: %s", pages[0])
	}
}

func TestParseCards(t *testing.T) {
	cards, err := parseCards(`[{"address":" 1 High St ","price":"£250,000","url":"/properties/1"}]`)
	if err != nil {
		t.Fatalf("parseCards: %v", err)
	}
	if len(cards) != 1 || cards[0].URL != "/properties/1" || cards[0].Price != "£250,000" {
		t.Errorf("unexpected cards: %+v", cards)
	}

	if cards, err := parseCards(""); err != nil || cards != nil {
		t.Errorf("empty payload: got %v, %v", cards, err)
	}
	if _, err := parseCards("{not json"); err == nil {
		t.Error("expected decode error")
	}
}

func TestFindChromeBinaryPrefersConfigured(t *testing.T) {
	if got := findChromeBinary("/opt/chrome"); got != "/opt/chrome" {
		t.Errorf("got %q, want configured path", got)
	}
}
