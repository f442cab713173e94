// Package bgg implements the ingest.Fetcher port against the BoardGameGeek
// XML API (game documents) and the public browse pages (ranking ids).
package bgg

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"bgg-catalog/internal/ingest"
)

const DefaultBaseURL = "https://boardgamegeek.com"

type Client struct {
	http      *http.Client
	baseURL   string
	userAgent string
}

func NewClient(baseURL string, timeout time.Duration, userAgent string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if userAgent == "" {
		userAgent = "bgg-catalog/1.0"
	}
	return &Client{
		http:      &http.Client{Timeout: timeout},
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		userAgent: userAgent,
	}
}

type valueAttr struct {
	Value string `xml:"value,attr"`
}

type thingName struct {
	Type  string `xml:"type,attr"`
	Value string `xml:"value,attr"`
}

type thingLink struct {
	Type  string `xml:"type,attr"`
	ID    int    `xml:"id,attr"`
	Value string `xml:"value,attr"`
}

type thingRank struct {
	Type         string `xml:"type,attr"`
	Name         string `xml:"name,attr"`
	FriendlyName string `xml:"friendlyname,attr"`
	Value        string `xml:"value,attr"`
}

type pollResult struct {
	Value    string `xml:"value,attr"`
	NumVotes int    `xml:"numvotes,attr"`
}

type pollResults struct {
	NumPlayers string       `xml:"numplayers,attr"`
	Results    []pollResult `xml:"result"`
}

type thingPoll struct {
	Name    string        `xml:"name,attr"`
	Results []pollResults `xml:"results"`
}

type thingItem struct {
	ID          int         `xml:"id,attr"`
	Image       string      `xml:"image"`
	Names       []thingName `xml:"name"`
	Year        valueAttr   `xml:"yearpublished"`
	MinPlayers  valueAttr   `xml:"minplayers"`
	MaxPlayers  valueAttr   `xml:"maxplayers"`
	MinPlaytime valueAttr   `xml:"minplaytime"`
	MaxPlaytime valueAttr   `xml:"maxplaytime"`
	MinAge      valueAttr   `xml:"minage"`
	Links       []thingLink `xml:"link"`
	Polls       []thingPoll `xml:"poll"`
	Statistics  struct {
		Ratings struct {
			UsersRated    valueAttr   `xml:"usersrated"`
			Average       valueAttr   `xml:"average"`
			NumComments   valueAttr   `xml:"numcomments"`
			AverageWeight valueAttr   `xml:"averageweight"`
			Ranks         []thingRank `xml:"ranks>rank"`
		} `xml:"ratings"`
	} `xml:"statistics"`
}

type thingItems struct {
	Items []thingItem `xml:"item"`
}

// FetchGame retrieves one game with statistics and converts it into the
// pipeline's document shape.
func (c *Client) FetchGame(ctx context.Context, bggID int) (*ingest.Document, error) {
	url := fmt.Sprintf("%s/xmlapi2/thing?id=%d&stats=1", c.baseURL, bggID)
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}

	var payload thingItems
	if err := xml.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode thing response for %d: %w", bggID, err)
	}
	if len(payload.Items) == 0 {
		return nil, fmt.Errorf("game %d not found", bggID)
	}
	item := payload.Items[0]

	doc := &ingest.Document{
		BggID:         bggID,
		ImageURL:      strPtr(strings.TrimSpace(item.Image)),
		YearReleased:  intPtr(item.Year.Value),
		MinPlayers:    intPtr(item.MinPlayers.Value),
		MaxPlayers:    intPtr(item.MaxPlayers.Value),
		MinPlaytime:   intPtr(item.MinPlaytime.Value),
		MaxPlaytime:   intPtr(item.MaxPlaytime.Value),
		MinAge:        intPtr(item.MinAge.Value),
		AvgRating:     floatPtr(item.Statistics.Ratings.Average.Value),
		RatingsCount:  intPtr(item.Statistics.Ratings.UsersRated.Value),
		CommentsCount: intPtr(item.Statistics.Ratings.NumComments.Value),
		Weight:        floatPtr(item.Statistics.Ratings.AverageWeight.Value),
	}

	for _, name := range item.Names {
		switch {
		case name.Type == "primary" && doc.PrimaryName == "":
			doc.PrimaryName = name.Value
		case name.Type == "alternate" && doc.JapaneseName == nil && hasJapanese(name.Value):
			doc.JapaneseName = strPtr(name.Value)
		}
	}

	for _, link := range item.Links {
		switch link.Type {
		case "boardgamedesigner":
			doc.Designers = append(doc.Designers, ingest.DesignerCredit{Name: link.Value})
		case "boardgameartist":
			doc.Artists = append(doc.Artists, link.Value)
		case "boardgamepublisher":
			doc.Publishers = append(doc.Publishers, link.Value)
		case "boardgamemechanic":
			doc.Mechanics = append(doc.Mechanics, link.Value)
		case "boardgamecategory":
			doc.Categories = append(doc.Categories, link.Value)
		case "boardgamehonor":
			if award, ok := parseHonor(link.Value); ok {
				award.BggURL = strPtr(fmt.Sprintf("%s/boardgamehonor/%d", c.baseURL, link.ID))
				doc.Awards = append(doc.Awards, award)
			}
		}
	}

	for _, rank := range item.Statistics.Ratings.Ranks {
		switch {
		case rank.Type == "subtype" && rank.Name == "boardgame":
			doc.RankOverall = intPtr(rank.Value)
		case rank.Type == "family":
			gr := ingest.GenreRank{
				Genre: genreName(rank.FriendlyName),
				Rank:  intPtr(rank.Value),
			}
			if rank.Name != "" {
				gr.BggURL = strPtr(fmt.Sprintf("%s/%s/browse/boardgame", c.baseURL, rank.Name))
			}
			doc.GenreRanks = append(doc.GenreRanks, gr)
		}
	}

	doc.BestPlayerCounts = bestPlayerCounts(item.Polls)
	return doc, nil
}

var boardgameHref = regexp.MustCompile(`/boardgame/(\d+)`)

// FetchRankingIDs scrapes one page of the boardgame browse ranking and
// returns the bgg_ids it links to, deduplicated and sorted.
func (c *Client) FetchRankingIDs(ctx context.Context, page int) ([]int, error) {
	if page < 1 {
		return nil, fmt.Errorf("page must be positive, got %d", page)
	}
	url := fmt.Sprintf("%s/browse/boardgame/page/%d", c.baseURL, page)
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}

	seen := make(map[int]struct{})
	for _, match := range boardgameHref.FindAllStringSubmatch(string(body), -1) {
		if id, err := strconv.Atoi(match[1]); err == nil && id > 0 {
			seen[id] = struct{}{}
		}
	}
	ids := make([]int, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request %s: unexpected status %d", url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// bestPlayerCounts picks the player counts whose "Best" votes beat both
// other options in the suggested_numplayers poll. Entries like "4+" are
// skipped.
func bestPlayerCounts(polls []thingPoll) []int {
	var counts []int
	for _, poll := range polls {
		if poll.Name != "suggested_numplayers" {
			continue
		}
		for _, res := range poll.Results {
			count, err := strconv.Atoi(res.NumPlayers)
			if err != nil {
				continue
			}
			votes := make(map[string]int, len(res.Results))
			for _, r := range res.Results {
				votes[r.Value] = r.NumVotes
			}
			best := votes["Best"]
			if best > 0 && best > votes["Recommended"] && best > votes["Not Recommended"] {
				counts = append(counts, count)
			}
		}
	}
	return counts
}

var honorText = regexp.MustCompile(`(?i)^(\d{4})\s+(.+?)\s+(Winner|Nominee|Finalist)$`)

// parseHonor splits an honor link's text, e.g.
// "2017 Golden Geek Board Game of the Year Winner", into an award instance.
// Honors with a different text shape are skipped.
func parseHonor(text string) (ingest.AwardInstance, bool) {
	m := honorText.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return ingest.AwardInstance{}, false
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return ingest.AwardInstance{}, false
	}
	return ingest.AwardInstance{Name: m[2], Year: year, Type: m[3]}, true
}

// genreName strips the ranking suffix from a family rank's friendly name,
// e.g. "Strategy Game Rank" -> "Strategy".
func genreName(friendly string) string {
	name := strings.TrimSpace(friendly)
	name = strings.TrimSuffix(name, " Game Rank")
	name = strings.TrimSuffix(name, " Rank")
	return name
}

func hasJapanese(s string) bool {
	for _, r := range s {
		if unicode.In(r, unicode.Hiragana, unicode.Katakana, unicode.Han) {
			return true
		}
	}
	return false
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func intPtr(s string) *int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &v
}

func floatPtr(s string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return &v
}
