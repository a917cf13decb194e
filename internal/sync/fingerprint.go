package sync

import (
	"crypto/md5"
	"encoding/base64"
	"strings"
)

// fingerprintSalt is appended to the user portion of a JID before
// digesting. Wire compatibility constant: contact updates arriving keyed
// by fingerprint were produced with this exact salt.
const fingerprintSalt = "WA_USER_SEARCH"

// fingerprintLen is how many characters of the encoded digest survive.
const fingerprintLen = 3

// Fingerprint derives the short identity digest for a contact JID: the
// normalized user portion plus the fixed salt, MD5-digested, base64
// encoded, truncated to three characters. Three characters cannot be
// unique; resolution by fingerprint is best effort only.
func Fingerprint(jid string) string {
	user := jid
	if i := strings.IndexByte(user, '@'); i >= 0 {
		user = user[:i]
	}
	// Strip any device part: "1234:5@s" and "1234@s" are the same user.
	if i := strings.IndexByte(user, ':'); i >= 0 {
		user = user[:i]
	}
	sum := md5.Sum([]byte(user + fingerprintSalt))
	return base64.StdEncoding.EncodeToString(sum[:])[:fingerprintLen]
}
