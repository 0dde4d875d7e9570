package podcast

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"net/http"
	"strconv"
)

// rssDocument, rssChannel, rssItem, rssEnclosure mirror the subset of the
// iTunes RSS dialect the feed needs, adapted from cobblepod's RSS struct
// tags to this system's Podcast/Episode shape.
type rssDocument struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Xmlns   string     `xml:"xmlns:itunes,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Language      string    `xml:"language"`
	Description   string    `xml:"description"`
	LastBuildDate string    `xml:"lastBuildDate"`
	Author        string    `xml:"itunes:author"`
	Image         *rssImage `xml:"itunes:image,omitempty"`
	Items         []rssItem `xml:"item"`
}

type rssImage struct {
	Href string `xml:"href,attr"`
}

type rssItem struct {
	Title       string       `xml:"title"`
	Description string       `xml:"description"`
	Link        string       `xml:"link"`
	GUID        rssGUID      `xml:"guid"`
	PubDate     string       `xml:"pubDate"`
	Author      string       `xml:"itunes:author,omitempty"`
	Duration    string       `xml:"itunes:duration,omitempty"`
	Image       *rssImage    `xml:"itunes:image,omitempty"`
	Enclosure   rssEnclosure `xml:"enclosure"`
}

type rssGUID struct {
	IsPermaLink string `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

type rssEnclosure struct {
	URL    string `xml:"url,attr"`
	Type   string `xml:"type,attr"`
	Length string `xml:"length,attr"`
}

// MarshalRSS serializes p into an RSS XML document with the
// "<?xml ... ?>" declaration, matching the podcast-XML responder's
// "text/xml; charset=UTF-8" body (spec §4.3 step 6).
func MarshalRSS(p Podcast) ([]byte, error) {
	doc := rssDocument{
		Version: "2.0",
		Xmlns:   "http://www.itunes.com/dtds/podcast-1.0.dtd",
		Channel: rssChannel{
			Title:         p.Title,
			Link:          p.Link,
			Language:      p.Language,
			Description:   p.Description,
			LastBuildDate: p.CreatedAt.UTC().Format(http.TimeFormat),
			Author:        p.AuthorAndOwnerName,
		},
	}
	if p.ImageURL != "" {
		doc.Channel.Image = &rssImage{Href: p.ImageURL}
	}

	for _, ep := range p.Episodes {
		item := rssItem{
			Title:       ep.Title,
			Description: ep.Description,
			Link:        ep.Link,
			GUID:        rssGUID{IsPermaLink: "false", Value: ep.Enclosure.LocalURL},
			PubDate:     ep.PubDate.UTC().Format(http.TimeFormat),
			Author:      ep.Author,
			Enclosure: rssEnclosure{
				URL:    ep.Enclosure.LocalURL,
				Type:   ep.Enclosure.MimeType,
				Length: strconv.FormatInt(ep.Enclosure.LengthBytes, 10),
			},
		}
		if ep.DurationSeconds > 0 {
			item.Duration = strconv.FormatInt(ep.DurationSeconds, 10)
		}
		if ep.ImageURL != "" {
			item.Image = &rssImage{Href: ep.ImageURL}
		}
		doc.Channel.Items = append(doc.Channel.Items, item)
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("podcast: marshal RSS: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.Write(body)
	return buf.Bytes(), nil
}
