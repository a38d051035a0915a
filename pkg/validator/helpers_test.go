package validator_test

import "regexp"

var hexRe = regexp.MustCompile(`#[0-9a-fA-F]{6}|#[0-9a-fA-F]{3}`)

func regexpHex(s string) []string {
	return hexRe.FindAllString(s, -1)
}
