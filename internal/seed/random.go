package seed

import (
	"math/rand/v2"
	"strings"
	"time"

	"github.com/5w1tchy/library-api/internal/models"
)

const (
	DefaultAuthors = 10
	DefaultBooks   = 30
	DefaultSeed    = 42

	minPages = 100
	maxPages = 800
	// publication dates fall within this many years before now
	publicationYears = 74
)

var (
	firstNames = []string{
		"Lucía", "Mateo", "Valentina", "Santiago", "Camila", "Joaquín", "Isabel", "Tomás",
		"Martina", "Gabriel", "Elena", "Andrés", "Sofía", "Diego", "Carmen", "Julián",
	}
	lastNames = []string{
		"García", "Fernández", "López", "Martínez", "Benítez", "Rojas", "Acosta", "Morales",
		"Navarro", "Ortiz", "Castro", "Vargas", "Romero", "Medina", "Silva", "Duarte",
	}
	nationalities = []string{
		"Paraguay", "España", "Mexico", "Argentina", "Colombia", "Chile",
		"Brasil", "Estados Unidos", "Reino Unido", "Francia", "Alemania",
	}
	titlePrefixes = []string{
		"El", "La", "Los", "Las", "Un", "Una", "Historia de",
		"Crónicas de", "Memorias de", "Viaje a", "El misterio de",
		"El secreto de", "La vida de", "Aventuras en", "El legado de",
	}
	titleSuffixes = []string{
		"perdido", "olvidado", "oculto", "rojo", "azul", "dorado",
		"oscuro", "brillante", "eterno", "final", "primero", "último",
		"secreto", "misterioso", "legendario", "extraordinario",
	}
	places = []string{
		"Asunción", "Valparaíso", "Sevilla", "Cartagena", "Montevideo", "Oaxaca",
		"Lisboa", "Córdoba", "Salamanca", "Cusco", "Encarnación", "Mendoza",
	}
	words = []string{
		"camino", "río", "silencio", "ciudad", "sombra", "jardín", "puerto", "invierno",
		"carta", "espejo", "isla", "faro", "desierto", "tormenta", "biblioteca", "reloj",
		"memoria", "viento", "frontera", "noche",
	}
)

// Random builds a reproducible catalog: every book gets one to three
// distinct authors, 100..800 pages and a publication date in the last 74
// years.
func Random(seed uint64, nAuthors, nBooks int, now time.Time) Dataset {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	today := now.UTC().Truncate(24 * time.Hour)

	ds := Dataset{
		Authors: make([]AuthorRecord, 0, nAuthors),
		Books:   make([]BookRecord, 0, nBooks),
	}
	for range nAuthors {
		// born between 120 and 25 years ago
		born := dateBetween(rng, today.AddDate(-120, 0, 0), today.AddDate(-25, 0, 0))
		ds.Authors = append(ds.Authors, AuthorRecord{
			FirstName:   pick(rng, firstNames),
			LastName:    pick(rng, lastNames),
			BirthDate:   &born,
			Nationality: pick(rng, nationalities),
			Biography:   sentences(rng, 4),
		})
	}

	for range nBooks {
		pages := minPages + rng.IntN(maxPages-minPages+1)
		published := dateBetween(rng, today.AddDate(-publicationYears, 0, 0), today)
		b := BookRecord{
			Title:           title(rng),
			PublicationDate: &published,
			Description:     sentences(rng, 3),
			PageCount:       &pages,
			Language:        pick(rng, models.LanguageCodes),
		}
		if nAuthors > 0 {
			n := 1 + rng.IntN(min(3, nAuthors))
			b.Authors = rng.Perm(nAuthors)[:n]
		}
		ds.Books = append(ds.Books, b)
	}
	return ds
}

func pick(rng *rand.Rand, from []string) string {
	return from[rng.IntN(len(from))]
}

func dateBetween(rng *rand.Rand, from, to time.Time) models.Date {
	days := int(to.Sub(from).Hours() / 24)
	d := from.AddDate(0, 0, rng.IntN(days+1))
	return models.NewDate(d.Year(), d.Month(), d.Day())
}

func capitalize(s string) string {
	for i := range s {
		if i > 0 {
			return strings.ToUpper(s[:i]) + s[i:]
		}
	}
	return strings.ToUpper(s)
}

func title(rng *rand.Rand) string {
	var t string
	switch rng.IntN(5) {
	case 0:
		t = pick(rng, titlePrefixes)
	case 1:
		if rng.IntN(2) == 0 {
			t = pick(rng, titlePrefixes) + " " + pick(rng, places)
		} else {
			t = pick(rng, titlePrefixes) + " " + pick(rng, firstNames)
		}
	case 2:
		t = capitalize(pick(rng, words)) + " " + pick(rng, titleSuffixes)
	case 3:
		t = pick(rng, titlePrefixes) + " " + capitalize(pick(rng, words)) + " de " + pick(rng, places)
	default:
		n := 3 + rng.IntN(6)
		parts := make([]string, n)
		for i := range parts {
			parts[i] = pick(rng, words)
		}
		t = capitalize(strings.Join(parts, " "))
	}
	if len([]rune(t)) > 250 {
		t = string([]rune(t)[:250])
	}
	return t
}

func sentences(rng *rand.Rand, n int) string {
	out := make([]string, n)
	for i := range out {
		k := 5 + rng.IntN(8)
		ws := make([]string, k)
		for j := range ws {
			ws[j] = pick(rng, words)
		}
		out[i] = capitalize(strings.Join(ws, " ")) + "."
	}
	return strings.Join(out, " ")
}
