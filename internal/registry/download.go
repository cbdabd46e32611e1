package registry

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"time"

	"github.com/rotisserie/eris"

	"github.com/camatlas/camatlas/internal/fetcher"
)

// The ICO publishes a daily ZIP under a stable media path; only the date in
// the filename changes. The download page embeds the current link in a
// custom element's x-href attribute.
const (
	DefaultBaseURL      = "https://ico.org.uk"
	DefaultDownloadPage = "/about-the-ico/what-we-do/register-of-fee-payers/download-the-register/"

	// CSVNameInZIP is the register CSV inside the daily archive.
	CSVNameInZIP = "register-of-data-controllers.csv"
)

var zipHrefRe = regexp.MustCompile(`x-href="([^"]+\.zip)"`)

// Locator discovers the current register ZIP URL.
type Locator struct {
	BaseURL      string
	DownloadPage string
	Fetcher      fetcher.Fetcher
}

// ZIPURL scrapes the download page for the current register archive link.
// If the page doesn't expose one, it falls back to today's dated URL.
func (l Locator) ZIPURL(ctx context.Context) (string, error) {
	base := l.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	page := l.DownloadPage
	if page == "" {
		page = DefaultDownloadPage
	}

	body, err := l.Fetcher.Download(ctx, base+page)
	if err != nil {
		return "", eris.Wrap(err, "registry: fetch download page")
	}
	defer body.Close() //nolint:errcheck

	html, err := io.ReadAll(body)
	if err != nil {
		return "", eris.Wrap(err, "registry: read download page")
	}

	if m := zipHrefRe.FindSubmatch(html); m != nil {
		return base + string(m[1]), nil
	}

	today := time.Now().UTC().Format("2006-01-02")
	return fmt.Sprintf("%s/media2/cfnc5zdf/register-of-data-controllers-%s.zip", base, today), nil
}
