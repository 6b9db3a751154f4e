package token

import "strconv"

func jwtSubject(id int64) string {
	return strconv.FormatInt(id, 10)
}

func parseSubject(sub string) (int64, error) {
	return strconv.ParseInt(sub, 10, 64)
}
