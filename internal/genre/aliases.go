package genre

// aliases maps slugged spellings, in Portuguese and English, to a category genre.
var aliases = map[string]int{
	"acao":            Action,
	"action":          Action,
	"acao-e-aventura": Action,
	"comedia":         Comedy,
	"comedy":          Comedy,
	"comedias":        Comedy,
	"drama":           Drama,
	"dramas":          Drama,
	"terror":          Horror,
	"horror":          Horror,
	"documentario":    Documentary,
	"documentarios":   Documentary,
	"documentary":     Documentary,
	"animacao":        Animation,
	"animation":       Animation,
	"animes":          Animation,
	"anime":           Animation,
	"fantasia":        Fantasy,
	"fantasy":         Fantasy,
}

// Resolve maps a free-form genre name ("Ação", "Comédias", "documentary")
// to a category genre id.
func Resolve(name string) (int, bool) {
	id, ok := aliases[Slugify(name)]
	return id, ok
}
