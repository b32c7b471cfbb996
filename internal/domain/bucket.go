package domain

// Bucket is one of the six fixed allocation jars money is assigned to.
// The set is not user-editable; percentages are display labels only.
type Bucket string

const (
	BucketNEC  Bucket = "NEC"  // necessities
	BucketLTSS Bucket = "LTSS" // long-term savings
	BucketEDU  Bucket = "EDU"  // education
	BucketPLAY Bucket = "PLAY" // entertainment
	BucketFFA  Bucket = "FFA"  // financial freedom / investment
	BucketGIVE Bucket = "GIVE" // giving

	// BucketAuto distributes the amount across all six jars by their
	// percentages; BucketNone opts out of jar allocation entirely. Both are
	// valid draft values, so a draft carrying them still commits.
	BucketAuto Bucket = "AUTO"
	BucketNone Bucket = "NONE"
)

// Buckets lists the six selectable jars in menu order.
func Buckets() []Bucket {
	return []Bucket{BucketNEC, BucketLTSS, BucketEDU, BucketPLAY, BucketFFA, BucketGIVE}
}

// bucketInfo holds the display metadata for one jar.
type bucketInfo struct {
	name    string
	percent int
}

var bucketInfos = map[Bucket]bucketInfo{
	BucketNEC:  {"Thiết yếu", 55},
	BucketLTSS: {"Tiết kiệm dài hạn", 10},
	BucketEDU:  {"Giáo dục", 10},
	BucketPLAY: {"Hưởng thụ", 10},
	BucketFFA:  {"Tự do tài chính", 10},
	BucketGIVE: {"Cho đi", 5},
	BucketAuto: {"Chia đều các hũ", 0},
	BucketNone: {"Không vào hũ", 0},
}

// Valid reports whether b is a recognized bucket value.
func (b Bucket) Valid() bool {
	_, ok := bucketInfos[b]
	return ok
}

// Name returns the Vietnamese display name, or the raw value if unknown.
func (b Bucket) Name() string {
	if info, ok := bucketInfos[b]; ok {
		return info.name
	}
	return string(b)
}

// Percent returns the jar's display percentage (0 for AUTO/NONE).
func (b Bucket) Percent() int {
	return bucketInfos[b].percent
}

// Account is the funding (or destination) account of a transaction.
// A short fixed enumeration; no remote account catalog is fetched.
type Account string

const (
	AccountCash    Account = "cash"
	AccountBank    Account = "bank"
	AccountEWallet Account = "ewallet"
	AccountOther   Account = "other"
)

// Accounts lists the selectable accounts in menu order.
func Accounts() []Account {
	return []Account{AccountCash, AccountBank, AccountEWallet, AccountOther}
}

var accountNames = map[Account]string{
	AccountCash:    "Tiền mặt",
	AccountBank:    "Ngân hàng",
	AccountEWallet: "Ví điện tử",
	AccountOther:   "Khác",
}

// Valid reports whether a is a recognized account value.
func (a Account) Valid() bool {
	_, ok := accountNames[a]
	return ok
}

// Name returns the Vietnamese display name, or the raw value if unknown.
func (a Account) Name() string {
	if name, ok := accountNames[a]; ok {
		return name
	}
	return string(a)
}
