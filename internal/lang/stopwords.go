package lang

func set(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

var stopwordsByCode = map[string]map[string]struct{}{
	"en": set(
		"a", "about", "above", "after", "again", "against", "all", "am", "an",
		"and", "any", "are", "aren't", "as", "at", "be", "because", "been",
		"before", "being", "below", "between", "both", "but", "by", "can",
		"cannot", "could", "couldn't", "did", "didn't", "do", "does",
		"doesn't", "doing", "don't", "down", "during", "each", "few", "for",
		"from", "further", "had", "hadn't", "has", "hasn't", "have",
		"haven't", "having", "he", "her", "here", "hers", "herself", "him",
		"himself", "his", "how", "i", "if", "in", "into", "is", "isn't",
		"it", "its", "itself", "just", "me", "more", "most", "my", "myself",
		"no", "nor", "not", "now", "of", "off", "on", "once", "only", "or",
		"other", "our", "ours", "ourselves", "out", "over", "own", "same",
		"she", "should", "shouldn't", "so", "some", "such", "than", "that",
		"the", "their", "theirs", "them", "themselves", "then", "there",
		"these", "they", "this", "those", "through", "to", "too", "under",
		"until", "up", "very", "was", "wasn't", "we", "were", "weren't",
		"what", "when", "where", "which", "while", "who", "whom", "why",
		"will", "with", "won't", "would", "wouldn't", "you", "your",
		"yours", "yourself", "yourselves",
	),
	"de": set(
		"aber", "alle", "als", "also", "am", "an", "auch", "auf", "aus",
		"bei", "bin", "bis", "bist", "da", "damit", "dann", "das", "dass",
		"dein", "dem", "den", "der", "des", "die", "doch", "dort", "du",
		"durch", "ein", "eine", "einem", "einen", "einer", "eines", "er",
		"es", "für", "habe", "haben", "hat", "hatte", "hier", "ich", "ihr",
		"im", "in", "ist", "ja", "kann", "mein", "mit", "nach", "nicht",
		"noch", "nun", "nur", "oder", "schon", "sein", "sich", "sie",
		"sind", "so", "über", "um", "und", "uns", "vom", "von", "vor",
		"war", "waren", "was", "wenn", "wie", "wir", "wird", "zu", "zum",
		"zur",
	),
	"fr": set(
		"au", "aux", "avec", "ce", "ces", "cette", "dans", "de", "des",
		"du", "elle", "elles", "en", "est", "et", "être", "il", "ils",
		"je", "la", "le", "les", "leur", "lui", "mais", "me", "même",
		"mes", "mon", "ne", "nos", "notre", "nous", "on", "ont", "ou",
		"où", "par", "pas", "plus", "pour", "que", "qui", "sa", "se",
		"ses", "son", "sont", "sur", "ta", "te", "tes", "ton", "tout",
		"tu", "un", "une", "vos", "votre", "vous",
	),
	"es": set(
		"al", "algo", "antes", "como", "con", "cual", "cuando", "de",
		"del", "donde", "el", "ella", "ellas", "ellos", "en", "entre",
		"era", "es", "esa", "ese", "eso", "esta", "este", "esto", "fue",
		"ha", "hay", "la", "las", "le", "les", "lo", "los", "más", "me",
		"mi", "muy", "no", "nos", "nosotros", "o", "os", "para", "pero",
		"por", "que", "quien", "se", "ser", "si", "sin", "sobre", "son",
		"su", "sus", "también", "te", "tiene", "todo", "tu", "un", "una",
		"uno", "unos", "vosotros", "y", "ya", "yo",
	),
	"it": set(
		"a", "ad", "ai", "al", "alla", "anche", "che", "chi", "ci", "come",
		"con", "cosa", "da", "dei", "del", "della", "di", "dove", "e", "è",
		"ed", "essere", "gli", "ha", "hanno", "ho", "i", "il", "in", "io",
		"la", "le", "lei", "lo", "loro", "lui", "ma", "mi", "mio", "ne",
		"nel", "noi", "non", "o", "per", "più", "qua", "quella", "quello",
		"questa", "questo", "qui", "se", "sei", "si", "sia", "sono", "su",
		"sua", "suo", "ti", "tra", "tu", "tua", "tuo", "un", "una", "uno",
		"vi", "voi",
	),
	"pt": set(
		"a", "ao", "aos", "aquela", "aquele", "as", "até", "com", "como",
		"da", "das", "de", "dela", "dele", "depois", "do", "dos", "e",
		"ela", "elas", "ele", "eles", "em", "entre", "era", "essa", "esse",
		"esta", "este", "eu", "foi", "há", "isso", "isto", "já", "mais",
		"mas", "me", "mesmo", "meu", "minha", "muito", "na", "nas", "não",
		"no", "nos", "nós", "o", "os", "ou", "para", "pela", "pelo", "por",
		"quando", "que", "quem", "se", "sem", "ser", "seu", "sua", "são",
		"também", "te", "tem", "teu", "tu", "tua", "um", "uma", "você",
		"vocês",
	),
}
