package match

// canonicalNames maps phonetic spellings and anglicized nicknames to a
// canonical form, so "Neeve" and "Niamh" compare equal. The table is built
// from names common on Irish club rosters, where transcription services
// routinely anglicize spellings.
var canonicalNames = map[string]string{
	// Girls' names
	"niamh": "niamh", "neeve": "niamh", "neve": "niamh", "nieve": "niamh",
	"siobhan": "siobhan", "shivawn": "siobhan", "shivon": "siobhan", "chevonne": "siobhan",
	"aoife": "aoife", "eefa": "aoife", "efa": "aoife",
	"caoimhe": "caoimhe", "keeva": "caoimhe", "queeva": "caoimhe", "kweeva": "caoimhe",
	"saoirse": "saoirse", "seersha": "saoirse", "sorsha": "saoirse", "sersha": "saoirse",
	"clodagh": "clodagh", "cloda": "clodagh", "kloda": "clodagh", "chlodagh": "clodagh",
	"grainne": "grainne", "grawnya": "grainne", "gronya": "grainne",
	"roisin": "roisin", "rosheen": "roisin",
	"aisling": "aisling", "ashling": "aisling", "ashleen": "aisling",
	"sadhbh": "sadhbh", "sive": "sadhbh", "sadbh": "sadhbh",
	"meabh": "meabh", "maeve": "meabh", "meadhbh": "meabh", "mave": "meabh",
	"ailbhe": "ailbhe", "alva": "ailbhe",
	"blathnaid": "blathnaid", "blanid": "blathnaid",
	"eilis": "eilis", "aylish": "eilis",

	// Boys' names
	"sean": "sean", "shawn": "sean", "shaun": "sean",
	"padraig": "padraig", "paddy": "padraig", "pauric": "padraig", "porick": "padraig",
	"tadhg": "tadhg", "tige": "tadhg", "tyg": "tadhg", "teig": "tadhg",
	"oisin": "oisin", "osheen": "oisin", "usheen": "oisin",
	"cian": "cian", "kian": "cian",
	"eoin": "eoin", "owen": "eoin", "eoghan": "eoin",
	"darragh": "darragh", "dara": "darragh", "daragh": "darragh",
	"donnacha": "donnacha", "donncha": "donnacha", "donagh": "donnacha",
	"fionn": "fionn", "finn": "fionn",
	"diarmuid": "diarmuid", "dermot": "diarmuid",
	"ruairi": "ruairi", "rory": "ruairi", "ruari": "ruairi",
	"cathal": "cathal", "cahal": "cathal",
	"odhran": "odhran", "oran": "odhran",
	"fiachra": "fiachra", "feekra": "fiachra",
	"caolan": "caolan", "keelan": "caolan",
	"seamus": "seamus", "shamus": "seamus",
	"micheal": "micheal", "meehaul": "micheal",
}

// CanonicalName returns the canonical form of a first name, or "" when the
// name is not in the alias table. Input is normalized before lookup.
func CanonicalName(name string) string {
	return canonicalNames[Normalize(name)]
}

// SameName reports whether two first names resolve to the same canonical
// form via the alias table.
func SameName(a, b string) bool {
	ca := CanonicalName(a)
	return ca != "" && ca == CanonicalName(b)
}
