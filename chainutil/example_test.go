package chainutil_test

import (
	"fmt"
	"math"

	"github.com/ledgerkit/ledgercore/chainutil"
)

func ExampleAmount() {
	a := chainutil.Amount(0)
	fmt.Println("Zero minor units:", a.Format(chainutil.AmountWhole, "VEL"))

	a = chainutil.Amount(1e8)
	fmt.Println("100,000,000 minor units:", a.Format(chainutil.AmountWhole, "VEL"))

	a = chainutil.Amount(1e5)
	fmt.Println("100,000 minor units:", a.Format(chainutil.AmountWhole, "VEL"))
	// Output:
	// Zero minor units: 0 VEL
	// 100,000,000 minor units: 1 VEL
	// 100,000 minor units: 0.00100000 VEL
}

func ExampleNewAmount() {
	amountOne, err := chainutil.NewAmount(1)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(amountOne.Format(chainutil.AmountWhole, "VEL"))

	amountFraction, err := chainutil.NewAmount(0.01234567)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(amountFraction.Format(chainutil.AmountWhole, "VEL"))

	amountZero, err := chainutil.NewAmount(0)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(amountZero.Format(chainutil.AmountWhole, "VEL"))

	_, err = chainutil.NewAmount(math.NaN())
	fmt.Println(err)

	// Output: 1 VEL
	// 0.01234567 VEL
	// 0 VEL
	// chainutil: invalid amount
}

func ExampleAmount_unitConversions() {
	amount := chainutil.Amount(44433322211100)

	fmt.Println("minor to kVEL:", amount.Format(chainutil.AmountKilo, "VEL"))
	fmt.Println("minor to VEL:", amount.Format(chainutil.AmountWhole, "VEL"))
	fmt.Println("minor to mVEL:", amount.Format(chainutil.AmountMilli, "VEL"))
	fmt.Println("minor to uVEL:", amount.Format(chainutil.AmountMicro, "VEL"))
	fmt.Println("minor to minor-VEL:", amount.Format(chainutil.MinorUnit, "VEL"))

	// Output:
	// minor to kVEL: 444.333222111 kVEL
	// minor to VEL: 444333.22211100 VEL
	// minor to mVEL: 444333222.111 mVEL
	// minor to uVEL: 444333222111 uVEL
	// minor to minor-VEL: 44433322211100 minor-VEL
}
