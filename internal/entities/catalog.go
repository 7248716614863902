package entities

import (
	"time"

	"github.com/shelfwise/catalog/internal/errs"
)

// Genre is the closed set of book genres the catalog understands.
type Genre string

const (
	GenreHorror         Genre = "HORROR"
	GenreComedy         Genre = "COMEDY"
	GenreRomance        Genre = "ROMANCE"
	GenreSuspense       Genre = "SUSPENSE"
	GenreScienceFiction Genre = "SCIENCE_FICTION"
	GenreBiography      Genre = "BIOGRAPHY"
	GenreFantasy        Genre = "FANTASY"
	GenreComicBook      Genre = "COMIC_BOOK"
	GenreManga          Genre = "MANGA"
	GenreSelfHelp       Genre = "SELF_HELP"
	GenreAction         Genre = "ACTION"
	GenreAdventure      Genre = "ADVENTURE"
	GenreEncyclopedia   Genre = "ENCYCLOPEDIA"
)

var genreDescriptions = map[Genre]string{
	GenreHorror:         "Horror",
	GenreComedy:         "Comedy",
	GenreRomance:        "Romance",
	GenreSuspense:       "Suspense",
	GenreScienceFiction: "Science Fiction",
	GenreBiography:      "Biography",
	GenreFantasy:        "Fantasy",
	GenreComicBook:      "Comic Book",
	GenreManga:          "Manga",
	GenreSelfHelp:       "Self Help",
	GenreAction:         "Action",
	GenreAdventure:      "Adventure",
	GenreEncyclopedia:   "Encyclopedia",
}

// genreOrder fixes the ordering of select options; map iteration is random.
var genreOrder = []Genre{
	GenreHorror, GenreComedy, GenreRomance, GenreSuspense, GenreScienceFiction,
	GenreBiography, GenreFantasy, GenreComicBook, GenreManga, GenreSelfHelp,
	GenreAction, GenreAdventure, GenreEncyclopedia,
}

// Description returns the human-readable label for the genre.
func (g Genre) Description() string {
	return genreDescriptions[g]
}

// ParseGenre maps a token (enum name, case-insensitive, spaces or dashes
// accepted as underscores) to a Genre. Unknown tokens are a validation
// failure naming the offending value.
func ParseGenre(token string) (Genre, error) {
	g := Genre(normalizeGenreToken(token))
	if _, ok := genreDescriptions[g]; !ok {
		return "", errs.Validationf("genre not mapped in the system: %s", token)
	}
	return g, nil
}

func normalizeGenreToken(token string) string {
	out := make([]rune, 0, len(token))
	for _, r := range token {
		switch {
		case r >= 'a' && r <= 'z':
			out = append(out, r-('a'-'A'))
		case r == ' ' || r == '-':
			out = append(out, '_')
		default:
			out = append(out, r)
		}
	}
	return string(out)
}

// SelectOption is a value/label pair for UI dropdowns.
type SelectOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// GenreOptions returns every genre as a select option, in a stable order.
func GenreOptions() []SelectOption {
	options := make([]SelectOption, 0, len(genreOrder))
	for _, g := range genreOrder {
		options = append(options, SelectOption{Value: string(g), Label: g.Description()})
	}
	return options
}

type Author struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Name      string     `gorm:"index;size:256" json:"name"`
	Age       *int       `json:"age,omitempty"`
	BirthDate *time.Time `gorm:"column:birth_date" json:"birth_date,omitempty"`
	DeathDate *time.Time `gorm:"column:death_date" json:"death_date,omitempty"`
	Biography string     `gorm:"size:400" json:"biography,omitempty"`
	Books     []Book     `gorm:"many2many:book_authors;" json:"-"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ComputeAge derives the author's age from the birth date, capped at the
// death date when one is set. Returns nil when the birth date is unknown.
func ComputeAge(birth, death *time.Time) *int {
	if birth == nil {
		return nil
	}
	end := time.Now()
	if death != nil {
		end = *death
	}
	years := end.Year() - birth.Year()
	if end.YearDay() < birth.YearDay() {
		years--
	}
	return &years
}

type Publisher struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"index;size:256" json:"name"`
	TaxID     string    `gorm:"column:tax_id;size:18" json:"tax_id,omitempty"`
	Books     []Book    `gorm:"foreignKey:PublisherID" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Book struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Title           string     `gorm:"index;size:512" json:"title"`
	PublicationDate *time.Time `gorm:"column:publication_date" json:"publication_date,omitempty"`
	ISBN10          string     `gorm:"column:isbn_10;index;size:10" json:"isbn_10,omitempty"`
	ISBN13          string     `gorm:"column:isbn_13;index;size:13" json:"isbn_13,omitempty"`
	Genre           Genre      `gorm:"size:32" json:"genre,omitempty"`
	PublisherID     uint       `gorm:"index" json:"publisher_id"`
	Publisher       Publisher  `gorm:"foreignKey:PublisherID" json:"publisher,omitempty"`
	Authors         []Author   `gorm:"many2many:book_authors;" json:"authors,omitempty"`

	// Directed self-relation; kept symmetric by convention only. Edits that
	// shrink the set leave the far side's back-reference in place.
	SimilarBooks []*Book `gorm:"many2many:similar_books;foreignKey:ID;joinForeignKey:BookID;references:ID;joinReferences:SimilarBookID" json:"similar_books,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Author) TableName() string {
	return "authors"
}

func (Publisher) TableName() string {
	return "publishers"
}

func (Book) TableName() string {
	return "books"
}
