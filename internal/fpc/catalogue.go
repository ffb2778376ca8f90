package fpc

// VoteKind identifies a support, oppose or neutral vote
type VoteKind int

const (
	Support VoteKind = iota
	Oppose
	Neutral
)

// VoteKinds lists every vote kind in reporting order
var VoteKinds = []VoteKind{Support, Oppose, Neutral}

func (k VoteKind) String() string {
	switch k {
	case Support:
		return "support"
	case Oppose:
		return "oppose"
	case Neutral:
		return "neutral"
	default:
		return "unknown"
	}
}

// Alias is one template name a vote or marker may be written with.
// FoldFirst means the first letter matches in either case ("Support" and "support").
type Alias struct {
	Name      string
	FoldFirst bool
}

// Catalogue is the static table of template aliases the matcher is compiled from.
// It is never modified after construction.
type Catalogue struct {
	Support  []Alias
	Oppose   []Alias
	Neutral  []Alias
	Withdraw []Alias
	Contest  []Alias

	// ImageNamespaces are the link namespaces that embed an image, matched case-insensitively
	ImageNamespaces []string
}

// Votes returns the aliases for a vote kind
func (c *Catalogue) Votes(kind VoteKind) []Alias {
	switch kind {
	case Support:
		return c.Support
	case Oppose:
		return c.Oppose
	case Neutral:
		return c.Neutral
	default:
		return nil
	}
}

func fold(names ...string) []Alias {
	out := make([]Alias, len(names))
	for i, n := range names {
		out[i] = Alias{Name: n, FoldFirst: true}
	}
	return out
}

func exact(names ...string) []Alias {
	out := make([]Alias, len(names))
	for i, n := range names {
		out[i] = Alias{Name: n}
	}
	return out
}

func join(groups ...[]Alias) []Alias {
	var out []Alias
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// DefaultCatalogue returns the polling templates in use on Commons together with
// their common redirects.
func DefaultCatalogue() *Catalogue {
	return &Catalogue{
		Support: join(
			fold("Support", "Pro", "Sim", "Tak", "Sí", "PRO", "Sup", "Yes", "Oui", "Kyllä"),
			exact("падтрымліваю"),
			fold("A favour", "Pour", "Tacaíocht", "Concordo"),
			exact("בעד"),
			fold("Samþykkt"),
			exact("支持", "찬성"),
			fold("Sfor"),
			exact("за"),
			fold("Stödjer"),
			exact("เห็นด้วย"),
			fold("Destek"),
		),
		Oppose: join(
			fold("Oppose", "Kontra", "Não", "Nie", "Mautohe", "Opp", "Nein", "Ei"),
			// Latin capital C or Cyrillic small с
			exact("Cупраць", "супраць"),
			fold("En contra", "Contre", "I gcoinne", "Díliostaigh", "Discordo"),
			exact("נגד", "á móti", "反対", "除外", "반대"),
			fold("Mot"),
			exact("против"),
			fold("Stödjer ej"),
			exact("ไม่เห็นด้วย"),
			fold("Karsi"),
			exact("FPX contested"),
		),
		Neutral: join(
			fold("Neutral", "Neutra", "Opartisk", "Neutre", "Neutro"),
			exact("נמנע"),
			fold("Nøytral"),
			exact("中立", "Нэўтральна"),
			fold("Tarafsız"),
			exact("Воздерживаюсь"),
			fold("Hlutlaus"),
			exact("중립"),
			fold("Neodrach"),
			exact("เป็นกลาง"),
			fold("Vn"),
		),
		Withdraw:        fold("Withdraw"),
		Contest:         exact("FPX"),
		ImageNamespaces: []string{"File", "Image"},
	}
}
