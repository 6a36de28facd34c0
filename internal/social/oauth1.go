package social

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// oauth1Signer signs requests with OAuth 1.0a HMAC-SHA1 user context
type oauth1Signer struct {
	consumerKey    string
	consumerSecret string
	token          string
	tokenSecret    string

	now   func() time.Time
	nonce func() string
}

func newOAuth1Signer(consumerKey, consumerSecret, token, tokenSecret string) *oauth1Signer {
	return &oauth1Signer{
		consumerKey:    consumerKey,
		consumerSecret: consumerSecret,
		token:          token,
		tokenSecret:    tokenSecret,
		now:            time.Now,
		nonce: func() string {
			return strings.ReplaceAll(uuid.NewString(), "-", "")
		},
	}
}

// authorize sets the Authorization header. JSON bodies are not part of the
// signature, only query parameters are.
func (s *oauth1Signer) authorize(req *http.Request) {
	oauth := s.oauthParams(s.nonce(), strconv.FormatInt(s.now().Unix(), 10))

	params := url.Values{}
	for k, v := range req.URL.Query() {
		params[k] = append(params[k], v...)
	}
	for k, v := range oauth {
		params.Set(k, v)
	}
	oauth["oauth_signature"] = s.signature(req.Method, req.URL, params)

	req.Header.Set("Authorization", authorizationHeader(oauth))
}

func (s *oauth1Signer) oauthParams(nonce, timestamp string) map[string]string {
	return map[string]string{
		"oauth_consumer_key":     s.consumerKey,
		"oauth_nonce":            nonce,
		"oauth_signature_method": "HMAC-SHA1",
		"oauth_timestamp":        timestamp,
		"oauth_token":            s.token,
		"oauth_version":          "1.0",
	}
}

func (s *oauth1Signer) signature(method string, u *url.URL, params url.Values) string {
	key := percentEncode(s.consumerSecret) + "&" + percentEncode(s.tokenSecret)
	mac := hmac.New(sha1.New, []byte(key))
	mac.Write([]byte(signatureBase(method, u, params)))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func signatureBase(method string, u *url.URL, params url.Values) string {
	type pair struct{ k, v string }
	encoded := make([]pair, 0, len(params))
	for k, vs := range params {
		for _, v := range vs {
			encoded = append(encoded, pair{percentEncode(k), percentEncode(v)})
		}
	}
	sort.Slice(encoded, func(i, j int) bool {
		if encoded[i].k != encoded[j].k {
			return encoded[i].k < encoded[j].k
		}
		return encoded[i].v < encoded[j].v
	})
	pairs := make([]string, len(encoded))
	for i, p := range encoded {
		pairs[i] = p.k + "=" + p.v
	}

	base := url.URL{Scheme: strings.ToLower(u.Scheme), Host: strings.ToLower(u.Host), Path: u.Path}
	return strings.ToUpper(method) + "&" + percentEncode(base.String()) + "&" + percentEncode(strings.Join(pairs, "&"))
}

func authorizationHeader(oauth map[string]string) string {
	keys := make([]string, 0, len(oauth))
	for k := range oauth {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, percentEncode(k)+`="`+percentEncode(oauth[k])+`"`)
	}
	return "OAuth " + strings.Join(parts, ", ")
}

// percentEncode is RFC 3986 encoding as OAuth requires it
func percentEncode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
