package catalog

import "strings"

type MediaType string

const (
	MediaTypeNone  MediaType = ""
	MediaTypeVideo MediaType = "video"
	MediaTypeImage MediaType = "image"
	MediaTypeAudio MediaType = "audio"
	MediaTypeCode  MediaType = "code"
)

// mediaRules maps category-id substrings to the media type a response
// from that category renders as. Order matters: the first match wins.
var mediaRules = []struct {
	substr string
	media  MediaType
}{
	{"video", MediaTypeVideo},
	{"image", MediaTypeImage},
	{"music", MediaTypeAudio},
	{"speech", MediaTypeAudio},
	{"code", MediaTypeCode},
}

// ClassifyMediaType derives the rendering branch from a category id by
// substring matching. Category ids encode the intent ("text-to-video"),
// so this stays a substring contract rather than a closed enum. Unknown
// ids classify as plain text (MediaTypeNone).
func ClassifyMediaType(categoryID string) MediaType {
	for _, r := range mediaRules {
		if strings.Contains(categoryID, r.substr) {
			return r.media
		}
	}
	return MediaTypeNone
}
