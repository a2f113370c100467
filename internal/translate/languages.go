package translate

// Language describes a supported target language. Unavailable is the
// message returned when neither the provider nor the dictionary can produce
// a translation.
type Language struct {
	Code        string
	Name        string
	Header      string
	Unavailable string
}

var supported = []Language{
	{Code: "hi", Name: "Hindi", Header: "हिंदी अनुवाद:", Unavailable: "अनुवाद सेवा अभी उपलब्ध नहीं है।"},
	{Code: "bn", Name: "Bengali", Header: "বাংলা অনুবাদ:", Unavailable: "অনুবাদ পরিষেবা এখন উপলব্ধ নয়।"},
	{Code: "ta", Name: "Tamil", Header: "தமிழ் மொழிபெயர்ப்பு:", Unavailable: "மொழிபெயர்ப்பு சேவை தற்போது கிடைக்கவில்லை."},
	{Code: "te", Name: "Telugu", Header: "తెలుగు అనువాదం:", Unavailable: "అనువాద సేవ ప్రస్తుతం అందుబాటులో లేదు."},
	{Code: "mr", Name: "Marathi", Header: "मराठी अनुवाद:", Unavailable: "भाषांतर सेवा सध्या उपलब्ध नाही."},
	{Code: "kn", Name: "Kannada", Header: "ಕನ್ನಡ ಅನುವಾದ:", Unavailable: "ಅನುವಾದ ಸೇವೆ ಪ್ರಸ್ತುತ ಲಭ್ಯವಿಲ್ಲ."},
	{Code: "gu", Name: "Gujarati", Header: "ગુજરાતી અનુવાદ:", Unavailable: "અનુવાદ સેવા હાલમાં ઉપલબ્ધ નથી."},
}

// Languages returns the supported target languages in display order.
func Languages() []Language {
	return append([]Language(nil), supported...)
}

// Lookup returns the language for code.
func Lookup(code string) (Language, bool) {
	for _, l := range supported {
		if l.Code == code {
			return l, true
		}
	}
	return Language{}, false
}

// IsSupported reports whether code is a supported target language.
func IsSupported(code string) bool {
	_, ok := Lookup(code)
	return ok
}
