package healthtext

// vocabulary maps each flag to the terms that trigger it. Order matters:
// Normalize walks this slice top to bottom, so output order is fixed.
// Multi-word terms match as phrases or as substrings of the full text.
var vocabulary = []struct {
	flag  Flag
	terms []string
}{
	{FlagRecentIllness, []string{
		"ill", "illness", "sick", "sickness", "fever", "cold", "cough",
		"infection", "infect", "flu", "unwell", "recently", "virus",
		"feverish", "running nose", "sore throat", "weak",
	}},
	{FlagDiabetes, []string{
		"diabetes", "diabetic", "sugar", "glucose", "blood sugar",
		"hyperglycemia", "hypoglycemia", "insulin", "prediabetic",
	}},
	{FlagAnemia, []string{
		"anemia", "anaemia", "haemoglobin", "hemoglobin", "hb",
		"low iron", "iron", "deficient", "thalassemia",
	}},
	{FlagBP, []string{
		"blood pressure", "hypertension", "hypertensive", "hypotension",
		"bp", "high bp", "low bp", "pressure",
	}},
	{FlagMedication, []string{
		"medication", "medicine", "medicines", "drug", "drugs",
		"antibiotic", "antibiotics", "treatment", "prescription",
		"taking", "on drugs", "tablet", "injection",
	}},
	{FlagSeriousCondition, []string{
		"cancer", "chemotherapy", "hiv", "aids", "hepatitis",
		"heart disease", "stroke", "major surgery", "leukemia",
		"lymphoma", "tumor", "malignant", "oncology",
	}},
}
