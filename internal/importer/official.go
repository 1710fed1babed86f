package importer

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/horockey/cardshelf/internal/model"
	"github.com/tidwall/gjson"
)

const (
	CardlistBaseURL = "https://ws-tcg.com/wp/wp-content/cardlist/"
	cardImagesURL   = CardlistBaseURL + "cardimages/"
)

var setNameOverrides = map[string]string{
	"DDD": "ダンダダン / DAN DA DAN",
	"SFN": "葬送のフリーレン / Frieren: Beyond Journey's End",
}

var (
	infoKeys      = []string{"pack", "info", "product", "meta", "header"}
	cardsKeys     = []string{"data", "cards", "cardList", "list", "items"}
	nestedKeys    = []string{"items", "rows", "list", "data"}
	titleKeys     = []string{"name", "title", "packTitle", "productName", "product_title"}
	setCodeKeys   = []string{"setCode", "set_code", "productCode", "product_code", "series", "series_id"}
	releaseKeys   = []string{"release", "releaseDate", "release_date", "date"}
	cardCodeKeys  = []string{"card_no", "cardNo", "cardCode", "card_code", "number"}
	cardTitleKeys = []string{"card_name", "cardName", "name", "title"}
	rarityKeys    = []string{"rarity", "rare", "rar"}
	colorKeys     = []string{"color", "colour", "card_color", "attribute"}
	levelKeys     = []string{"level", "lv"}
	costKeys      = []string{"cost", "c"}
	imageKeys     = []string{"image", "imageUrl", "image_url", "card_image"}
	descKeys      = []string{
		"ability",
		"ability1",
		"ability2",
		"ability_text",
		"text",
		"effect",
		"flavor",
		"flavor_text",
		"ability_en",
	}
)

var yearRe = regexp.MustCompile(`(20\d{2}|19\d{2})`)

// ParseOfficialPayload converts an official card list export into a single-series bundle.
// Payload is either a bare array of cards or an object wrapping it.
func ParseOfficialPayload(payload []byte, setCode string) (model.Bundle, error) {
	if !gjson.ValidBytes(payload) {
		return model.Bundle{}, fmt.Errorf("invalid json payload for %s", setCode)
	}
	root := gjson.ParseBytes(payload)

	var info, cardsRaw gjson.Result
	switch {
	case root.IsArray():
		cardsRaw = root
	case root.IsObject():
		info = firstObject(root, infoKeys)
		cardsRaw = extractCards(root)
	default:
		return model.Bundle{}, errors.New("unsupported payload type from official export")
	}

	if !cardsRaw.IsArray() {
		return model.Bundle{}, errors.New("card list not found in official payload")
	}
	raws := cardsRaw.Array()

	series := buildSeries(info, raws, setCode)

	cards := []model.Card{}
	for _, raw := range raws {
		if c, ok := buildCard(raw, series.ID, series.SetCode); ok {
			cards = append(cards, c)
		}
	}
	if len(cards) == 0 {
		return model.Bundle{}, fmt.Errorf("no cards could be parsed for set %s", setCode)
	}

	return model.Bundle{
		Series: []model.Series{series},
		Cards:  cards,
	}, nil
}

func extractCards(root gjson.Result) gjson.Result {
	for _, key := range cardsKeys {
		candidate := root.Get(key)
		switch {
		case candidate.IsArray():
			return candidate
		case candidate.IsObject():
			for _, nk := range nestedKeys {
				if nested := candidate.Get(nk); nested.IsArray() {
					return nested
				}
			}
		}
	}
	return gjson.Result{}
}

func buildSeries(info gjson.Result, raws []gjson.Result, setCode string) model.Series {
	title := firstStr(info, titleKeys)
	if title == "" {
		title = setCode
	}

	code := firstStr(info, setCodeKeys)
	if code == "" {
		code = deriveSetCode(raws, setCode)
	}

	year, ok := extractYear(firstStr(info, releaseKeys))
	if !ok {
		year = time.Now().Year()
	}

	family := strings.ToUpper(strings.SplitN(code, "/", 2)[0])
	if override, found := setNameOverrides[family]; found {
		title = override
	}

	return model.Series{
		ID:          SlugifyCode(code),
		Name:        title,
		SetCode:     code,
		ReleaseYear: year,
	}
}

// deriveSetCode takes "DDD/S97" out of the first card code like "DDD/S97-001".
func deriveSetCode(raws []gjson.Result, def string) string {
	for _, raw := range raws {
		if !raw.IsObject() {
			continue
		}
		code := firstStr(raw, cardCodeKeys)
		if code == "" {
			continue
		}
		parts := strings.Split(code, "-")
		switch {
		case strings.Contains(parts[0], "/"):
			return parts[0]
		case len(parts) >= 2:
			return parts[0] + "/" + parts[1]
		}
		return code
	}
	return def
}

func buildCard(raw gjson.Result, seriesID string, setCode string) (model.Card, bool) {
	if !raw.IsObject() {
		return model.Card{}, false
	}

	code := firstStr(raw, cardCodeKeys)
	title := firstStr(raw, cardTitleKeys)
	if code == "" || title == "" {
		return model.Card{}, false
	}

	res := model.Card{
		ID:          SlugifyCode(code),
		SeriesID:    seriesID,
		CardCode:    code,
		Title:       title,
		Rarity:      model.NormaliseRarity(firstStr(raw, rarityKeys)),
		Description: buildDescription(raw),
		Level:       optionalIntLenient(raw, levelKeys),
		Cost:        optionalIntLenient(raw, costKeys),
	}

	if color := firstStr(raw, colorKeys); color != "" {
		color = strings.ToUpper(color)
		res.Color = &color
	}

	img := NormaliseImageURL(firstStr(raw, imageKeys), code, setCode)
	res.ImageURL = &img

	return res, true
}

// buildDescription joins ability and flavor texts by blank lines skipping repeats.
func buildDescription(raw gjson.Result) string {
	parts := []string{}
	for _, key := range descKeys {
		v := firstStr(raw, []string{key})
		if v == "" || slices.Contains(parts, v) {
			continue
		}
		parts = append(parts, v)
	}
	return strings.Join(parts, "\n\n")
}

// NormaliseImageURL makes image reference absolute. Missing one is replaced
// by the conventional card image location.
func NormaliseImageURL(image string, cardCode string, setCode string) string {
	image = strings.TrimSpace(image)
	switch {
	case image == "":
		return DefaultImageURL(cardCode, setCode)
	case strings.HasPrefix(image, "//"):
		return "https:" + image
	case strings.HasPrefix(image, "http://"), strings.HasPrefix(image, "https://"):
		return image
	}

	base, _ := url.Parse(CardlistBaseURL)
	ref, err := url.Parse(image)
	if err != nil {
		return CardlistBaseURL + strings.TrimPrefix(image, "/")
	}
	return base.ResolveReference(ref).String()
}

func DefaultImageURL(cardCode string, setCode string) string {
	file := strings.ReplaceAll(cardCode, "/", "-") + ".png"
	if parts := strings.Split(setCode, "/"); len(parts) == 2 {
		return cardImagesURL + parts[0] + "/" + parts[1] + "/" + file
	}
	return cardImagesURL + setCode + "/" + file
}

func extractYear(v string) (int, bool) {
	m := yearRe.FindString(v)
	if m == "" {
		return 0, false
	}
	year, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return year, true
}

func firstStr(obj gjson.Result, keys []string) string {
	if !obj.IsObject() {
		return ""
	}
	for _, key := range keys {
		v := obj.Get(key)
		if v.Type != gjson.String {
			continue
		}
		if s := strings.TrimSpace(v.Str); s != "" {
			return s
		}
	}
	return ""
}

// optionalIntLenient accepts numbers and numeric strings. "-" and garbage mean absent.
func optionalIntLenient(obj gjson.Result, keys []string) *int {
	for _, key := range keys {
		v := obj.Get(key)
		switch v.Type {
		case gjson.Number:
			n := int(v.Int())
			return &n
		case gjson.String:
			s := strings.TrimSpace(v.Str)
			if s == "" {
				continue
			}
			n, err := strconv.Atoi(s)
			if err != nil {
				return nil
			}
			return &n
		}
	}
	return nil
}

func firstObject(obj gjson.Result, keys []string) gjson.Result {
	for _, key := range keys {
		if v := obj.Get(key); v.IsObject() {
			return v
		}
	}
	return gjson.Result{}
}
