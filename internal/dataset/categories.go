package dataset

var categoryLabels = map[string]string{
	"CD":    "Cirurgião Dentista",
	"EPAO":  "Entidade Prestadora de Assistência Odontológica",
	"TPD":   "Técnico em Prótese Dentária",
	"LB":    "Laboratório de Prótese Dentária",
	"TSB":   "Técnico em Saúde Bucal",
	"ASB":   "Auxiliar em Saúde Bucal",
	"APD":   "Auxiliar de Prótese Dentária",
	"ECIPO": "Empresa que comercializa e/ou industrializa produto odontológico",
}

// CategoryLabel returns the display label for a cleaned category code.
// Codes outside the dictionary are returned unchanged.
func CategoryLabel(code string) string {
	if label, exists := categoryLabels[code]; exists {
		return label
	}
	return code
}

// KnownCategory reports whether code is part of the fixed dictionary.
func KnownCategory(code string) bool {
	_, exists := categoryLabels[code]
	return exists
}
