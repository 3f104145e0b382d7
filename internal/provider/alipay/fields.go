package alipay

import "net/url"

// Field names used by the direct-pay protocol.
const (
	KeyService      = "service"
	KeyPartner      = "partner"
	KeyInputCharset = "_input_charset"
	KeyNotifyURL    = "notify_url"
	KeyReturnURL    = "return_url"
	KeyOutTradeNo   = "out_trade_no"
	KeySubject      = "subject"
	KeyPaymentType  = "payment_type"
	KeySellerEmail  = "seller_email"
	KeyTotalFee     = "total_fee"
	KeyBody         = "body"
	KeySign         = "sign"
	KeySignType     = "sign_type"
	KeyNotifyID     = "notify_id"
	KeyTradeStatus  = "trade_status"
	KeyTradeNo      = "trade_no"
	KeyPrice        = "price"
	KeyIsSuccess    = "is_success"
	KeyClientID     = "client_id"
)

// FieldSet is one protocol message: field name to value. Keys are case-sensitive.
type FieldSet map[string]string

// FromValues takes the first value of every key.
func FromValues(v url.Values) FieldSet {
	fs := make(FieldSet, len(v))
	for k, vals := range v {
		if len(vals) > 0 {
			fs[k] = vals[0]
		}
	}
	return fs
}

// Get returns the value for key, or "" when absent.
func (f FieldSet) Get(key string) string {
	return f[key]
}

// Clone returns an independent copy.
func (f FieldSet) Clone() FieldSet {
	out := make(FieldSet, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Without returns a copy with the given keys removed; f is untouched.
func (f FieldSet) Without(keys ...string) FieldSet {
	out := f.Clone()
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// Values converts to url.Values for form encoding.
func (f FieldSet) Values() url.Values {
	v := make(url.Values, len(f))
	for k, val := range f {
		v.Set(k, val)
	}
	return v
}

// Encode form-encodes the set, sorted by key.
func (f FieldSet) Encode() string {
	return f.Values().Encode()
}
