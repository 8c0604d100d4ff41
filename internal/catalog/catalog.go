// Package catalog holds the static registry of selectable model
// categories and models. Loaded once, read-only afterwards.
package catalog

type Model struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

type Category struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	Description        string  `json:"description"`
	Icon               string  `json:"icon"`
	RequiresAttachment bool    `json:"requires_attachment"`
	Models             []Model `json:"models"`
}

var categories = []Category{
	{
		ID:          "text-to-video",
		Name:        "Text → Video",
		Description: "Generate videos from text descriptions",
		Icon:        "🎥",
		Models: []Model{
			{ID: "text-to-video-1", Name: "VideoGen Pro", Description: "High-quality video generation from detailed text descriptions", Category: "text-to-video"},
		},
	},
	{
		ID:          "text-to-music",
		Name:        "Text → Music",
		Description: "Create music from text instructions",
		Icon:        "🎵",
		Models: []Model{
			{ID: "text-to-music-1", Name: "MusicGen AI", Description: "Generate musical compositions from text prompts", Category: "text-to-music"},
		},
	},
	{
		ID:          "text-to-code",
		Name:        "Text → Code",
		Description: "Generate code from text descriptions",
		Icon:        "💻",
		Models: []Model{
			{ID: "text-to-code-1", Name: "CodeGen AI", Description: "Generate code in multiple programming languages", Category: "text-to-code"},
		},
	},
	{
		ID:          "text-to-image",
		Name:        "Text → Image",
		Description: "Create images from text descriptions",
		Icon:        "🎨",
		Models: []Model{
			{ID: "text-to-image-1", Name: "ImageGen Pro", Description: "Generate high-quality images from text descriptions", Category: "text-to-image"},
		},
	},
	{
		ID:          "text-to-speech",
		Name:        "Text → Speech",
		Description: "Convert text to natural-sounding speech",
		Icon:        "🗣️",
		Models: []Model{
			{ID: "text-to-speech-1", Name: "VoiceGen AI", Description: "Natural text-to-speech conversion with multiple voices", Category: "text-to-speech"},
		},
	},
	{
		ID:                 "multimodal",
		Name:               "Multimodal",
		Description:        "Process multiple types of input data",
		Icon:               "🔄",
		RequiresAttachment: true,
		Models: []Model{
			{ID: "multimodal-1", Name: "MultiGen Pro", Description: "Process text, images, and other data types together", Category: "multimodal"},
		},
	},
	{
		ID:                 "image-to-image",
		Name:               "Image + Text → Image",
		Description:        "Modify images using text instructions",
		Icon:               "🖼️",
		RequiresAttachment: true,
		Models: []Model{
			{ID: "image-to-image-1", Name: "ImageEdit Pro", Description: "Edit and transform images using text instructions", Category: "image-to-image"},
		},
	},
	{
		ID:                 "image-to-video",
		Name:               "Image + Text → Video",
		Description:        "Create videos from images and text",
		Icon:               "📽️",
		RequiresAttachment: true,
		Models: []Model{
			{ID: "image-to-video-1", Name: "VideoTransform AI", Description: "Transform images into videos with text guidance", Category: "image-to-video"},
		},
	},
}

// Categories returns the full catalog in display order.
func Categories() []Category { return categories }

// DefaultModel is the model preselected for a fresh workspace.
func DefaultModel() Model { return categories[0].Models[0] }

// ModelByID looks up a model anywhere in the catalog.
func ModelByID(id string) (Model, bool) {
	for _, cat := range categories {
		for _, m := range cat.Models {
			if m.ID == id {
				return m, true
			}
		}
	}
	return Model{}, false
}

// CategoryForModel returns the category a model id belongs to.
func CategoryForModel(modelID string) (Category, bool) {
	for _, cat := range categories {
		for _, m := range cat.Models {
			if m.ID == modelID {
				return cat, true
			}
		}
	}
	return Category{}, false
}

// MediaTypeForModel classifies the media a model's replies render as.
func MediaTypeForModel(modelID string) MediaType {
	cat, ok := CategoryForModel(modelID)
	if !ok {
		return MediaTypeNone
	}
	return ClassifyMediaType(cat.ID)
}
