package notify

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// Carriers maps a cell carrier to its email-to-SMS gateway domain
var Carriers = map[string]string{
	// US
	"alltel":      "mms.alltelwireless.com",
	"att":         "mms.att.net",
	"boost":       "myboostmobile.com",
	"cricket":     "mms.cricketwireless.net",
	"p_fi":        "msg.fi.google.com",
	"sprint":      "pm.sprint.com",
	"tmobile":     "tmomail.net",
	"us_cellular": "mms.uscc.net",
	"verizon":     "vtext.com",
	"virgin":      "vmpix.com",

	// Canada
	"bell":          "txt.bell.ca",
	"chatr":         "fido.ca",
	"fido":          "fido.ca",
	"freedom":       "txt.freedommobile.ca",
	"koodo":         "msg.koodomobile.com",
	"public_mobile": "msg.telus.com",
	"telus":         "msg.telus.com",
	"rogers":        "pcs.rogers.com",
	"sasktel":       "sms.sasktel.com",
	"speakout":      "pcs.rogers.com",
	"virgin_ca":     "vmobile.ca",
}

// CarrierNames lists the supported carriers alphabetically
func CarrierNames() []string {
	names := make([]string, 0, len(Carriers))
	for name := range Carriers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Gateway returns the SMS gateway address for a phone number on a carrier.
// Formatting characters in the number are ignored.
func Gateway(phone, carrier string) (string, error) {
	domain, ok := Carriers[strings.ToLower(strings.TrimSpace(carrier))]
	if !ok {
		return "", fmt.Errorf("unknown carrier %q", carrier)
	}

	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, phone)
	if len(digits) < 10 {
		return "", fmt.Errorf("phone number %q has fewer than 10 digits", phone)
	}
	return digits + "@" + domain, nil
}

// FormatPhone renders the last ten digits as (555) 123-4567
func FormatPhone(phone string) string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, phone)
	if len(digits) < 10 {
		return phone
	}
	d := digits[len(digits)-10:]
	return fmt.Sprintf("(%s) %s-%s", d[:3], d[3:6], d[6:])
}
