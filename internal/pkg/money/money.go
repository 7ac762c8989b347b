// Package money normalizes heterogeneous price representations into the
// canonical two-decimal string form the marketplace API is typed on.
// Prices are never handled as floats past this boundary: float serialization
// can silently corrupt cents, and the upstream API echoes prices back in
// textually different but numerically equal forms ("75.0" vs "75.00").
package money

import (
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"booklister/internal/pkg/errs"
)

var hundred = big.NewInt(100)

// decimalPattern admits plain decimal notation with an optional
// exponent. big.Rat.SetString would also accept fraction syntax
// ("3/2"), which is not a price.
var decimalPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// Canonical converts an int, float, or numeric string into a price string
// with exactly two decimal places, rounding half-up at cents precision.
// Canonical(35) == "35.00", Canonical("35.999") == "36.00".
func Canonical(value any) (string, error) {
	s, err := numericString(value)
	if err != nil {
		return "", err
	}

	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return "", errs.Mark(errs.New(fmt.Sprintf("cannot normalize price %q", s)), errs.ErrInvalidPrice)
	}

	return formatCents(roundHalfUpCents(r)), nil
}

// CanonicalPositive is Canonical restricted to strictly positive values.
func CanonicalPositive(value any) (string, error) {
	s, err := Canonical(value)
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(s, "-") || s == "0.00" {
		return "", errs.Mark(errs.New(fmt.Sprintf("price must be > 0, got %s", s)), errs.ErrInvalidPrice)
	}
	return s, nil
}

// Equal reports whether two price representations are the same amount at
// cents precision. Either side may be a number or a string in any textual
// form; unparseable input compares unequal.
func Equal(a, b any) bool {
	ca, err := Canonical(a)
	if err != nil {
		return false
	}
	cb, err := Canonical(b)
	if err != nil {
		return false
	}
	return ca == cb
}

// IsCanonical reports whether s is already in canonical two-decimal form.
func IsCanonical(s string) bool {
	c, err := Canonical(s)
	if err != nil {
		return false
	}
	return c == s
}

func numericString(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", errs.Mark(errs.New("price is nil"), errs.ErrInvalidPrice)
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return "", errs.Mark(errs.New("price is empty"), errs.ErrInvalidPrice)
		}
		if !decimalPattern.MatchString(s) {
			return "", errs.Mark(errs.New(fmt.Sprintf("price %q is not decimal", s)), errs.ErrInvalidPrice)
		}
		return s, nil
	case int:
		return strconv.Itoa(v), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	default:
		return "", errs.Mark(errs.New(fmt.Sprintf("unsupported price type %T", value)), errs.ErrInvalidPrice)
	}
}

// roundHalfUpCents returns r expressed in cents, with ties rounded away
// from zero (half-up in the decimal-arithmetic sense).
func roundHalfUpCents(r *big.Rat) *big.Int {
	num := new(big.Int).Mul(r.Num(), hundred)
	den := r.Denom()

	// floor((2*num + sign*den) / (2*den)) via truncating division, which
	// lands on half-away-from-zero for both signs.
	twiceNum := new(big.Int).Lsh(num, 1)
	if num.Sign() >= 0 {
		twiceNum.Add(twiceNum, den)
	} else {
		twiceNum.Sub(twiceNum, den)
	}
	return twiceNum.Quo(twiceNum, new(big.Int).Lsh(den, 1))
}

func formatCents(cents *big.Int) string {
	sign := ""
	abs := new(big.Int).Abs(cents)
	if cents.Sign() < 0 {
		sign = "-"
	}
	whole, frac := new(big.Int).QuoRem(abs, hundred, new(big.Int))
	return fmt.Sprintf("%s%s.%02d", sign, whole.String(), frac.Int64())
}
