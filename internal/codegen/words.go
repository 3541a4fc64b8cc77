package codegen

// vocabulary pairs nouns with qualifiers. The WORD of an emotional code is
// one noun followed by one qualifier, e.g. TIQ-IT-GONDOLACELESTE.
type vocabulary struct {
	nouns      []string
	qualifiers []string
}

// size is the number of distinct words the vocabulary can produce.
func (v vocabulary) size() int { return len(v.nouns) * len(v.qualifiers) }

var emotionalWords = map[string]vocabulary{
	"IT": {
		nouns: []string{
			"COLOSSEO", "GONDOLA", "CAPPUCCINO", "RINASCIMENTO", "VESUVIO", "PANTHEON", "TRAMONTO",
			"GELATO", "ARLECCHINO", "BAROCCO", "LIMONCELLO", "DOLOMITI", "SERENATA", "AMALFI", "PIAZZA",
			"FONTANA", "MANDOLINO", "PORTOFINO", "BELVEDERE", "ETNA", "TRULLO", "CAMPANILE", "ORIZZONTE",
			"CUPOLA", "AFFRESCO", "MOSAICO", "ANFITEATRO", "ACQUEDOTTO", "BASILICA", "CHIOSTRO", "LOGGIA",
			"PORTICO", "TERRAZZA", "GIARDINO", "VIGNETO", "ULIVETO", "LIMONETO", "AGRUMETO", "FARAGLIONE",
			"SCOGLIERA", "LAGUNA", "ISOLOTTO", "PROMONTORIO", "GOLFO", "BAIA", "CALETTA", "SPIAGGIA",
			"DUNA", "PINETA", "COLLINA", "VALLATA", "BORGO", "CASTELLO", "ROCCA", "TORRE", "BASTIONE",
			"PALAZZO", "VILLA", "CASCINA", "MASSERIA", "FRANTOIO", "CANTINA", "OSTERIA", "TRATTORIA",
			"PASTICCERIA", "FORNO", "MERCATO", "BOTTEGA", "LANTERNA", "CAMPANA", "OROLOGIO", "MERIDIANA",
			"BUSSOLA", "VELIERO", "BARCHETTA", "REMO", "ANCORA", "FARO", "MOLO", "PONTILE", "SENTIERO",
			"CAMMINO", "VIANDANTE", "PELLEGRINO", "POETA", "PITTORE", "SCULTORE", "MUSICO", "TENORE",
			"SOPRANO", "VIOLINO", "ARPA", "FLAUTO", "ORGANO", "CORO", "MADRIGALE", "SONETTO", "POEMA",
			"ROMANZO", "FAVOLA", "LEGGENDA", "SOGNO", "SORRISO", "ABBRACCIO", "SALUTO", "RICORDO",
			"VIAGGIO", "INCANTO", "STUPORE", "MERAVIGLIA", "ALBA", "AURORA", "CREPUSCOLO", "STELLA",
			"COMETA", "LUNA", "SOLE", "ARCOBALENO", "BREZZA", "MAESTRALE", "SCIROCCO", "LIBECCIO", "ZEFIRO",
			"GIRASOLE", "PAPAVERO", "LAVANDA", "GELSOMINO", "MAGNOLIA", "OLEANDRO", "GLICINE", "CIPRESSO",
			"PINO", "QUERCIA", "CASTAGNO", "MANDORLO", "CILIEGIO", "PESCO", "ARANCIO", "FICO", "MELOGRANO",
			"BASILICO", "ROSMARINO", "ORIGANO", "ZAFFERANO", "TARTUFO", "PARMIGIANO", "PECORINO",
			"MOZZARELLA", "BURRATA", "RICOTTA", "CANNOLO", "CASSATA", "TIRAMISU", "PANETTONE", "PANDORO",
			"TORRONE", "AMARETTO", "CROSTATA", "SFOGLIATELLA", "BABA", "RISOTTO", "LASAGNA", "TORTELLINO",
			"RAVIOLO", "GNOCCO", "ARANCINO", "PIADINA", "FOCACCIA", "GRISSINO", "PANZEROTTO",
		},
		qualifiers: []string{
			"BLU", "ROSA", "VIOLA", "LILLA", "CELESTE", "AMBRA", "AVORIO", "CORALLO", "SMERALDO", "ZAFFIRO",
			"RUBINO", "ARGENTO", "ORO", "FELICE", "GENTILE", "SOAVE", "DOLCE", "GRANDE", "NOBILE", "REALE",
			"SOLARE", "LUNARE", "LUCENTE", "BRILLANTE", "VIVACE", "LIEVE", "FORTE", "GIOVANE", "ARDENTE",
			"RIDENTE", "AMABILE", "CORDIALE", "SPECIALE", "SPLENDENTE", "FEDELE",
		},
	},
	"FR": {
		nouns: []string{
			"LOUVRE", "CROISSANT", "LAVANDE", "MONTMARTRE", "RIVIERA", "CHATEAU", "BONHEUR", "SEINE",
			"PROVENCE", "BRIOCHE", "BAGUETTE", "MACARON", "ECLAIR", "MADELEINE", "CREPE", "FROMAGE",
			"CAMEMBERT", "BRIE", "ROQUEFORT", "COMTE", "BORDEAUX", "CHAMPAGNE", "BOURGOGNE", "ALSACE",
			"NORMANDIE", "BRETAGNE", "CORSE", "SAVOIE", "AUVERGNE", "GASCOGNE", "CATHEDRALE", "ABBAYE",
			"BASTIDE", "MOULIN", "PHARE", "PORT", "QUAI", "PONT", "JARDIN", "VERGER", "VIGNOBLE", "OLIVIER",
			"TILLEUL", "PLATANE", "MIMOSA", "GLYCINE", "COQUELICOT", "TOURNESOL", "MUGUET", "JASMIN",
			"ETOILE", "SOLEIL", "LUNE", "AURORE", "CREPUSCULE", "NUAGE", "MISTRAL", "BRISE", "OCEAN",
			"FALAISE", "PLAGE", "DUNE", "CALANQUE", "LAGON", "ILE", "COLLINE", "VALLON", "SENTIER",
			"CHEMIN", "VOYAGE", "REVE", "SOURIRE", "CARESSE", "CHANSON", "POEME", "SONATE", "VALSE",
			"MUSETTE", "ACCORDEON", "VIOLON", "PINCEAU", "PALETTE", "TOILE", "BERET", "LANTERNE", "HORLOGE",
			"CADRAN", "BOUSSOLE", "VOILIER", "BATEAU",
		},
		qualifiers: []string{
			"BLEU", "ROUGE", "JAUNE", "ROSE", "ORANGE", "MAUVE", "CELESTE", "AMBRE", "IVOIRE", "CORAIL",
			"EMERAUDE", "SAPHIR", "RUBIS", "CALME", "SUBLIME", "MAGIQUE", "UNIQUE", "TENDRE", "AIMABLE",
			"FIDELE", "LIBRE", "RAPIDE", "SAGE", "AGILE", "DOCILE", "NOBLE", "SOLAIRE", "LUNAIRE",
		},
	},
	"ES": {
		nouns: []string{
			"FLAMENCO", "ALHAMBRA", "SIESTA", "PAELLA", "SAGRADA", "SOLEDAD", "ANDALUZ", "TAPAS",
			"MERIDIANO", "ALEGRIA", "GUITARRA", "CASTANUELA", "ABANICO", "MANTILLA", "SOMBRERO", "TORRE",
			"CASTILLO", "ALCAZAR", "MEZQUITA", "CATEDRAL", "PLAZA", "FUENTE", "PATIO", "JARDIN", "NARANJO",
			"OLIVO", "LIMONERO", "ALMENDRO", "GIRASOL", "CLAVEL", "AZAHAR", "JAZMIN", "BUGANVILLA",
			"ROMERO", "TOMILLO", "AZAFRAN", "CHURRO", "TURRON", "GAZPACHO", "TORTILLA", "JAMON", "CHORIZO",
			"QUESO", "MANCHEGO", "SANGRIA", "HORCHATA", "CALLE", "BARRIO", "PUEBLO", "ALDEA", "PLAYA",
			"CALA", "BAHIA", "ISLA", "FARO", "PUERTO", "MUELLE", "VELERO", "BARCO", "ANCLA", "SIERRA",
			"MONTE", "VALLE", "RIO", "LAGO", "CAMINO", "SENDERO", "VIAJE", "SUENO", "SONRISA", "ABRAZO",
			"BESO", "CANCION", "POEMA", "ROMANCE", "LEYENDA", "ESTRELLA", "LUNA", "SOL", "AURORA",
			"ATARDECER", "BRISA", "LEVANTE", "PONIENTE", "MOLINO", "VINEDO", "BODEGA", "TABERNA", "MERCADO",
			"LINTERNA",
		},
		qualifiers: []string{
			"AZUL", "VERDE", "ROSA", "NARANJA", "VIOLETA", "CELESTE", "AMBAR", "MARFIL", "CORAL",
			"ESMERALDA", "ZAFIRO", "RUBI", "PLATA", "ORO", "ALEGRE", "DULCE", "GRANDE", "FUERTE", "FELIZ",
			"BRILLANTE", "AMABLE", "NOBLE", "LIBRE", "GENTIL", "ELEGANTE", "VALIENTE", "SUAVE", "RADIANTE",
			"LEAL", "REAL", "SOLAR",
		},
	},
	"DE": {
		nouns: []string{
			"BRANDENBURG", "SCHWARZWALD", "FERNWEH", "BREZEL", "RHEIN", "GEMUETLICH", "NEUSCHWANSTEIN",
			"WANDERLUST", "ALPENGLUEHEN", "HEIMAT", "BURG", "SCHLOSS", "DOM", "KIRCHTURM", "RATHAUS",
			"MARKTPLATZ", "BRUNNEN", "GARTEN", "WEINBERG", "OBSTGARTEN", "LINDE", "EICHE", "BUCHE", "TANNE",
			"FICHTE", "KASTANIE", "EDELWEISS", "ENZIAN", "KORNBLUME", "SONNENBLUME", "BERG", "GIPFEL",
			"TAL", "SEE", "FLUSS", "BACH", "WALD", "WIESE", "HEIDE", "MOOR", "KUESTE", "DUENE", "INSEL",
			"LEUCHTTURM", "HAFEN", "SEGELBOOT", "ANKER", "BRUECKE", "PFAD", "WANDERWEG", "STERN", "SONNE",
			"MOND", "MORGENROT", "ABENDROT", "WOLKE", "REGENBOGEN", "BRISE", "NORDWIND", "FOEHN", "STRUDEL",
			"STOLLEN", "LEBKUCHEN", "PRETZEL", "KNOEDEL", "SPAETZLE", "BRATWURST", "SAUERKRAUT", "KAESE",
			"APFELWEIN", "TRAUM", "LAECHELN", "LIED", "GEDICHT", "MAERCHEN", "SAGE", "REISE", "ABENTEUER",
			"FREUDE", "GLUECK", "GEIGE", "HARFE", "ORGEL", "FLOETE", "CHOR", "WALZER", "UHR", "KOMPASS",
			"LATERNE", "KERZE",
		},
		qualifiers: []string{
			"BLAU", "ROT", "GELB", "GRUEN", "ROSA", "LILA", "GOLD", "SILBER", "BERNSTEIN", "ELFENBEIN",
			"KORALLE", "SMARAGD", "SAPHIR", "RUBIN", "FROH", "HELL", "KLAR", "SANFT", "STARK", "STILL",
			"WARM", "WEIT", "FREI", "EDEL", "TREU", "MILD", "LEICHT", "FEIN",
		},
	},
	"GB": {
		nouns: []string{
			"BIGBEN", "TEATIME", "HIGHLANDS", "CORNWALL", "THAMES", "STONEHENGE", "COTSWOLDS", "SHORTBREAD",
			"BRIGHTON", "SKYE", "SCONE", "CRUMPET", "MUFFIN", "TRIFLE", "PUDDING", "MARMALADE", "CHEDDAR",
			"STILTON", "CIDER", "ALE", "CASTLE", "ABBEY", "CATHEDRAL", "COTTAGE", "MANOR", "VILLAGE",
			"MEADOW", "MOOR", "HEATH", "GLEN", "LOCH", "FIRTH", "CLIFF", "COVE", "HARBOUR", "LIGHTHOUSE",
			"PIER", "BRIDGE", "LANE", "PATH", "ROSE", "BLUEBELL", "DAFFODIL", "THISTLE", "HEATHER", "IVY",
			"OAK", "ELM", "WILLOW", "ROWAN", "STAR", "MOON", "SUNRISE", "SUNSET", "RAINBOW", "BREEZE",
			"DRIZZLE", "CLOUD", "HORIZON", "DAWN", "JOURNEY", "DREAM", "SMILE", "SONG", "BALLAD", "SONNET",
			"LEGEND", "STORY", "RIDDLE", "WONDER", "LANTERN", "COMPASS", "CLOCK", "SAILBOAT", "ANCHOR",
			"KITE", "UMBRELLA", "TEAPOT", "GARDEN", "ORCHARD",
		},
		qualifiers: []string{
			"BLUE", "RED", "GOLD", "SILVER", "AMBER", "IVORY", "CORAL", "EMERALD", "SAPPHIRE", "RUBY",
			"GREEN", "VIOLET", "BRIGHT", "CALM", "BRAVE", "GENTLE", "HAPPY", "JOLLY", "KIND", "LUCKY",
			"MERRY", "NOBLE", "QUIET", "SUNNY", "SWEET", "WILD", "WARM", "ROYAL",
		},
	},
	"US": {
		nouns: []string{
			"BROADWAY", "GOLDENGATE", "ROUTESIXTYSIX", "YOSEMITE", "LIBERTY", "GRANDCANYON", "BAYOU",
			"PRAIRIE", "MANHATTAN", "SEQUOIA", "YELLOWSTONE", "EVERGLADES", "NIAGARA", "RUSHMORE",
			"ALCATRAZ", "HOLLYWOOD", "MALIBU", "NAPA", "SONOMA", "KEYWEST", "CANYON", "MESA", "BUTTE",
			"DESERT", "CACTUS", "REDWOOD", "ASPEN", "MAPLE", "MAGNOLIA", "CYPRESS", "RIVER", "DELTA",
			"LAKE", "ISLAND", "HARBOR", "LIGHTHOUSE", "BOARDWALK", "PIER", "BRIDGE", "HIGHWAY", "DINER",
			"JUKEBOX", "PANCAKE", "BAGEL", "PRETZEL", "PIE", "COBBLER", "BROWNIE", "CUPCAKE", "GUMBO",
			"BLUES", "JAZZ", "BANJO", "FIDDLE", "HARMONICA", "BALLAD", "ANTHEM", "RODEO", "LASSO", "WAGON",
			"STAR", "MOON", "SUNRISE", "SUNSET", "RAINBOW", "BREEZE", "THUNDER", "HORIZON", "DAWN",
			"TWILIGHT", "JOURNEY", "DREAM", "SMILE", "FRONTIER", "TRAIL", "CAMPFIRE", "LANTERN", "COMPASS",
			"EAGLE", "BISON",
		},
		qualifiers: []string{
			"BLUE", "RED", "GOLD", "SILVER", "AMBER", "IVORY", "CORAL", "EMERALD", "SAPPHIRE", "RUBY",
			"GREEN", "VIOLET", "BRIGHT", "CALM", "BRAVE", "GENTLE", "HAPPY", "JOLLY", "KIND", "LUCKY",
			"MERRY", "NOBLE", "QUIET", "SUNNY", "SWEET", "WILD", "WARM", "GRAND",
		},
	},
}

// SupportedCountries returns the country codes that have a vocabulary.
func SupportedCountries() []string {
	out := make([]string, 0, len(emotionalWords))
	for c := range emotionalWords {
		out = append(out, c)
	}
	return out
}
