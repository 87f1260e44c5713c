package speech

// Voice describes a synthesis voice the engine can render with.
type Voice struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Language string `json:"language"`
	Neural   bool   `json:"neural"`
}

// Catalog lists the available voices. The first entry is the default.
var Catalog = []Voice{
	{ID: "en-US-neural-f1", Name: "Ava", Language: "en-US", Neural: true},
	{ID: "en-US-neural-m1", Name: "Miles", Language: "en-US", Neural: true},
	{ID: "en-GB-neural-f1", Name: "Imogen", Language: "en-GB", Neural: true},
	{ID: "fr-FR-neural-f1", Name: "Élodie", Language: "fr-FR", Neural: true},
	{ID: "es-ES-neural-m1", Name: "Mateo", Language: "es-ES", Neural: true},
	{ID: "de-DE-neural-f1", Name: "Greta", Language: "de-DE", Neural: true},
	{ID: "ja-JP-neural-f1", Name: "Hana", Language: "ja-JP", Neural: true},
	{ID: "zh-CN-neural-f1", Name: "Mei", Language: "zh-CN", Neural: true},
}

// FindVoice looks a voice up by ID.
func FindVoice(id string) (Voice, bool) {
	for _, v := range Catalog {
		if v.ID == id {
			return v, true
		}
	}
	return Voice{}, false
}

// DefaultVoice is used when the caller does not pick one.
func DefaultVoice() Voice {
	return Catalog[0]
}
