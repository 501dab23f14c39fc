package site

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/mcpar-land/quill/internal/post"
)

type rssFeed struct {
	XMLName   xml.Name   `xml:"rss"`
	Version   string     `xml:"version,attr"`
	ContentNS string     `xml:"xmlns:content,attr"`
	Channel   rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	GUID        string   `xml:"guid"`
	PubDate     string   `xml:"pubDate"`
	Description string   `xml:"description"`
	Content     rssCDATA `xml:"content:encoded"`
}

type rssCDATA struct {
	Text string `xml:",cdata"`
}

// Feed encodes the newest posts as an RSS 2.0 document.
func (b *Builder) Feed(posts []*post.Post) ([]byte, error) {
	ch := rssChannel{
		Title:       b.opts.Title,
		Link:        b.opts.BaseURL,
		Description: "Feed for posts from " + b.opts.Title,
	}
	for _, p := range posts[:min(b.opts.FeedMaxItems, len(posts))] {
		link := b.opts.BaseURL + p.Href
		ch.Items = append(ch.Items, rssItem{
			Title:       p.Title,
			Link:        link,
			GUID:        link,
			PubDate:     p.Date.RFC2822(),
			Description: p.Description,
			Content:     rssCDATA{Text: string(p.Content)},
		})
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	feed := rssFeed{Version: "2.0", ContentNS: "http://purl.org/rss/1.0/modules/content/", Channel: ch}
	if err := enc.Encode(&feed); err != nil {
		return nil, fmt.Errorf("site: encode feed: %w", err)
	}
	return buf.Bytes(), nil
}

func (b *Builder) writeFeed(posts []*post.Post) error {
	data, err := b.Feed(posts)
	if err != nil {
		return err
	}
	return b.write("feed.xml", data)
}
