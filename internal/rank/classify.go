package rank

// Bucket is the classification of a scored record.
type Bucket string

const (
	BucketHigh    Bucket = "high-match" // eligible for cover-letter generation
	BucketGood    Bucket = "good-match" // eligible for the digest only
	BucketSkipped Bucket = "skipped"
)

// Thresholds are the classification cut-offs. Defaults come from config:
// high 70, good 50.
type Thresholds struct {
	High int
	Good int
}

// Classify is a pure function of the total score.
func Classify(total int, th Thresholds) Bucket {
	switch {
	case total >= th.High:
		return BucketHigh
	case total >= th.Good:
		return BucketGood
	default:
		return BucketSkipped
	}
}
