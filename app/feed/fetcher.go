package feed

import (
	"bufio"
	"bytes"
	"cmp"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	xpp "github.com/mmcdole/goxpp"
	"golang.org/x/net/html/charset"
)

const (
	atomNamespace  = "http://www.w3.org/2005/Atom"
	rss09Namespace = "http://my.netscape.com/rdf/simple/0.9/"
	rss10Namespace = "http://purl.org/rss/1.0/"
)

// Fetcher retrieves a feed and returns its first item in document order.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	timeout    time.Duration
	jsonParser *gofeed.Parser
}

func NewFetcher(httpClient *http.Client, userAgent string, timeout time.Duration) *Fetcher {
	return &Fetcher{
		httpClient: httpClient,
		userAgent:  userAgent,
		timeout:    timeout,
		jsonParser: gofeed.NewParser(),
	}
}

// FetchNewest streams the feed at feedURL and stops reading as soon as the
// first item (RSS) or entry (Atom) has been decoded. Relative link locations
// are resolved against the final feed URL.
func (f *Fetcher) FetchNewest(ctx context.Context, feedURL string) (*Item, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, "GET", feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", ErrFeedUnreachable, err)
	}

	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFeedUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %w", ErrFeedUnreachable, gofeed.HTTPError{StatusCode: resp.StatusCode, Status: resp.Status})
	}

	item, err := f.readNewest(resp.Body)
	if err != nil {
		return nil, err
	}

	resolveLinks(item, resp.Request.URL)
	return item, nil
}

func (f *Fetcher) readNewest(r io.Reader) (*Item, error) {
	br := bufio.NewReader(r)

	first, err := firstSignificantByte(br)
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty document", ErrNoItemFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFeedUnreachable, err)
	}

	if first == '{' {
		return f.readNewestJSON(br)
	}
	return readNewestXML(br)
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// firstSignificantByte drops a UTF-8 byte order mark, skips leading
// whitespace and leaves the reader positioned on the first significant byte.
func firstSignificantByte(br *bufio.Reader) (byte, error) {
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		br.Discard(len(utf8BOM))
	}

	for {
		ch, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch ch {
		case ' ', '\r', '\n', '\t':
		default:
			return ch, br.UnreadByte()
		}
	}
}

func readNewestXML(r io.Reader) (*Item, error) {
	p := xpp.NewXMLPullParser(r, false, charset.NewReaderLabel)

	for {
		event, err := p.Next()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidFeed, err)
		}

		switch event {
		case xpp.EndDocument:
			return nil, ErrNoItemFound
		case xpp.StartTag:
			if !isItemElement(p.Name) {
				continue
			}

			var raw xmlItem
			if err := p.DecodeElement(&raw); err != nil {
				return nil, fmt.Errorf("%w: failed to decode %s: %w", ErrInvalidFeed, p.Name, err)
			}
			return raw.toItem(), nil
		}
	}
}

func isItemElement(name string) bool {
	return strings.EqualFold(name, "item") || strings.EqualFold(name, "entry")
}

func (f *Fetcher) readNewestJSON(r io.Reader) (*Item, error) {
	parsed, err := f.jsonParser.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFeed, err)
	}

	if len(parsed.Items) == 0 || parsed.Items[0] == nil {
		return nil, ErrNoItemFound
	}

	newest := parsed.Items[0]
	item := &Item{Title: normalizeTitle(newest.Title)}

	if newest.Link != "" {
		item.Links = append(item.Links, Link{Rel: RelAlternate, URL: newest.Link})
	}
	for _, enclosure := range newest.Enclosures {
		if enclosure == nil {
			continue
		}
		item.Links = append(item.Links, Link{Rel: RelEnclosure, URL: enclosure.URL, MediaType: enclosure.Type})
	}

	return item, nil
}

type xmlItem struct {
	Titles     []xmlText      `xml:"title"`
	Links      []xmlLink      `xml:"link"`
	Enclosures []xmlEnclosure `xml:"enclosure"`
}

type xmlText struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

type xmlLink struct {
	XMLName xml.Name
	Href    string `xml:"href,attr"`
	Rel     string `xml:"rel,attr"`
	Type    string `xml:"type,attr"`
	Length  string `xml:"length,attr"`
	Value   string `xml:",chardata"`
}

type xmlEnclosure struct {
	URL    string `xml:"url,attr"`
	Type   string `xml:"type,attr"`
	Length string `xml:"length,attr"`
}

func (raw *xmlItem) toItem() *Item {
	item := &Item{}

	// itunes:title and friends share the local name, prefer the core element
	for _, title := range raw.Titles {
		if isCoreNamespace(title.XMLName.Space) {
			item.Title = normalizeTitle(title.Value)
			break
		}
	}
	if item.Title == "" && len(raw.Titles) > 0 {
		item.Title = normalizeTitle(raw.Titles[0].Value)
	}

	for _, link := range raw.Links {
		if !isCoreNamespace(link.XMLName.Space) {
			continue
		}
		if href := strings.TrimSpace(link.Href); href != "" {
			item.Links = append(item.Links, Link{
				Rel:       cmp.Or(strings.TrimSpace(link.Rel), RelAlternate),
				URL:       href,
				MediaType: link.Type,
				Length:    parseLength(link.Length),
			})
		} else if text := strings.TrimSpace(link.Value); text != "" {
			item.Links = append(item.Links, Link{Rel: RelAlternate, URL: text})
		}
	}

	for _, enclosure := range raw.Enclosures {
		item.Links = append(item.Links, Link{
			Rel:       RelEnclosure,
			URL:       strings.TrimSpace(enclosure.URL),
			MediaType: enclosure.Type,
			Length:    parseLength(enclosure.Length),
		})
	}

	return item
}

// normalizeTitle collapses runs of whitespace, line breaks included, to a
// single space so a title always fits on one marker line.
func normalizeTitle(title string) string {
	return strings.Join(strings.Fields(title), " ")
}

func isCoreNamespace(space string) bool {
	switch space {
	case "", atomNamespace, rss09Namespace, rss10Namespace:
		return true
	}
	return false
}

func parseLength(value string) int64 {
	length, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || length < 0 {
		return 0
	}
	return length
}

func resolveLinks(item *Item, base *url.URL) {
	if base == nil {
		return
	}
	for i, link := range item.Links {
		ref, err := url.Parse(link.URL)
		if err != nil || ref.IsAbs() {
			continue
		}
		item.Links[i].URL = base.ResolveReference(ref).String()
	}
}
