package enrich

import (
	"context"
	"strings"
	"testing"

	"github.com/sweeden-ttu/legal-luminary-texas-pipeline/models"
)

const samplePage = `<!DOCTYPE html>
<html><head><title>01-114 Sales and Use Tax Return</title></head>
<body><article>
<h1>Sales and Use Tax Return</h1>
<p>Taxpayers must file the sales and use tax return each reporting period.
The return covers state and local sales tax collected on taxable items.
Late filings accrue penalty and interest charges under the tax code.</p>
<p>Businesses report total sales, taxable sales, and taxable purchases.
The comptroller provides electronic filing for faster processing of the
sales tax return and any refund claims.</p>
</article></body></html>`

func testForm() models.FormDescriptor {
	return models.FormDescriptor{
		Identifier: "01-114",
		Title:      "01-114 Sales and Use Tax Return",
		URL:        "https://comptroller.texas.gov/taxforms/01-114.html",
		Category:   "sales",
	}
}

func TestEnrichHTML(t *testing.T) {
	e := NewLocalEnricher()

	result, err := e.Enrich(context.Background(), testForm(), []byte(samplePage))
	if err != nil {
		t.Fatalf("Enrich() failed: %v", err)
	}

	if result.Summary == "" {
		t.Error("Summary is empty")
	}
	if len(result.Summary) > summaryMaxLen {
		t.Errorf("Summary length = %d, want <= %d", len(result.Summary), summaryMaxLen)
	}
	if result.Language != "en" {
		t.Errorf("Language = %q, want en", result.Language)
	}
	if len(result.Keywords) == 0 {
		t.Fatal("Keywords is empty")
	}
	// "sales" dominates the sample text.
	found := false
	for _, kw := range result.Keywords {
		if kw == "sales" {
			found = true
		}
	}
	if !found {
		t.Errorf("Keywords = %v, want to contain sales", result.Keywords)
	}
}

func TestEnrichBinaryFallsBackToMetadata(t *testing.T) {
	e := NewLocalEnricher()

	pdf := append([]byte("%PDF-1.7"), 0x00, 0x01, 0x02)
	result, err := e.Enrich(context.Background(), testForm(), pdf)
	if err != nil {
		t.Fatalf("Enrich() failed: %v", err)
	}
	if !strings.Contains(result.Summary, "01-114") {
		t.Errorf("Summary = %q, want identifier fallback", result.Summary)
	}
}

func TestEnrichNothingUsable(t *testing.T) {
	e := NewLocalEnricher()

	form := models.FormDescriptor{URL: "https://x/doc.pdf"}
	if _, err := e.Enrich(context.Background(), form, []byte{0x00}); err == nil {
		t.Error("Enrich() expected error when no text and no metadata")
	}
}

func TestEnrichCancelledContext(t *testing.T) {
	e := NewLocalEnricher()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := e.Enrich(ctx, testForm(), []byte(samplePage)); err == nil {
		t.Error("Enrich() expected error on cancelled context")
	}
}

func TestWordFrequency(t *testing.T) {
	freq := WordFrequency("The sales tax. Sales tax, and SALES!")

	if freq["sales"] != 3 {
		t.Errorf("sales count = %d, want 3", freq["sales"])
	}
	if freq["tax"] != 2 {
		t.Errorf("tax count = %d, want 2", freq["tax"])
	}
	if _, ok := freq["the"]; ok {
		t.Error("stopword the not filtered")
	}
	if _, ok := freq[""]; ok {
		t.Error("empty token counted")
	}
}

func TestTopKeywords(t *testing.T) {
	freq := map[string]int{"tax": 5, "sales": 3, "return": 3, "refund": 1}

	got := TopKeywords(freq, 3)
	want := []string{"tax", "return", "sales"} // ties alphabetical
	if len(got) != 3 {
		t.Fatalf("TopKeywords() returned %d, want 3", len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("TopKeywords()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if got := TopKeywords(freq, 10); len(got) != 4 {
		t.Errorf("TopKeywords() with large n returned %d, want 4", len(got))
	}
}

func TestExcerpt(t *testing.T) {
	short := "A short sentence."
	if got := excerpt(short, 240); got != short {
		t.Errorf("excerpt(short) = %q", got)
	}

	long := strings.Repeat("Sales tax is due monthly. ", 30)
	got := excerpt(long, 240)
	if len(got) > 240 {
		t.Errorf("excerpt length = %d, want <= 240", len(got))
	}
	if !strings.HasSuffix(got, ".") {
		t.Errorf("excerpt should end at a sentence boundary, got %q", got)
	}
}
