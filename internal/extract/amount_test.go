package extract

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

var _ = Describe("findAmount", func() {
	var (
		lines  []string
		amount *decimal.Decimal
	)

	JustBeforeEach(func() {
		amount = findAmount(lines)
	})

	expectAmount := func(want string) {
		GinkgoHelper()
		Expect(amount).NotTo(BeNil())
		Expect(amount.String()).To(Equal(decimal.RequireFromString(want).String()))
	}

	When("both a subtotal and a total line are present", func() {
		BeforeEach(func() {
			lines = []string{"Subtotal: 50.00", "Tax 5.00", "Total: 75.00"}
		})

		It("picks the largest keyword value", func() {
			expectAmount("75.00")
		})
	})

	When("several keyword lines carry numbers", func() {
		BeforeEach(func() {
			lines = []string{"GRAND TOTAL 120.00", "Amount tendered 200.00", "Balance 80.00"}
		})

		It("keeps the maximum across keyword lines", func() {
			expectAmount("200.00")
		})
	})

	When("a keyword line has no numbers", func() {
		BeforeEach(func() {
			lines = []string{"TOTAL", "Item A 10.00", "Item B 20.00"}
		})

		It("falls back to the trailing lines", func() {
			expectAmount("20.00")
		})
	})

	When("no line has a keyword", func() {
		BeforeEach(func() {
			lines = []string{"Item A 10.00", "Item B 20.00", "Item C 30.00"}
		})

		It("takes the maximum of the trailing numeric lines", func() {
			expectAmount("30.00")
		})
	})

	When("a large number sits above the last five numeric lines", func() {
		BeforeEach(func() {
			lines = []string{
				"Store #99999",
				"Item 1.00",
				"no digits here",
				"Item 2.00",
				"Item 3.00",
				"Item 4.00",
				"Item 5.00",
			}
		})

		It("ignores it", func() {
			expectAmount("5.00")
		})
	})

	When("numbers use thousands separators", func() {
		BeforeEach(func() {
			lines = []string{"Total due 1,234.50"}
		})

		It("strips the separators", func() {
			expectAmount("1234.50")
		})
	})

	When("a number has a trailing decimal point", func() {
		BeforeEach(func() {
			lines = []string{"Total 45."}
		})

		It("parses the integer part", func() {
			expectAmount("45")
		})
	})

	When("the keyword is in a different case", func() {
		BeforeEach(func() {
			lines = []string{"item 99.00", "tOtAl 12.00"}
		})

		It("still matches the keyword line", func() {
			expectAmount("12.00")
		})
	})

	When("there are no numbers at all", func() {
		BeforeEach(func() {
			lines = []string{"Thank you", "Total", "Come again"}
		})

		It("returns nil", func() {
			Expect(amount).To(BeNil())
		})
	})

	When("the only number is zero", func() {
		BeforeEach(func() {
			lines = []string{"Total 0.00"}
		})

		It("returns zero rather than nil", func() {
			expectAmount("0")
		})
	})
})

var _ = Describe("extractNumbers", func() {
	It("finds every token on a line", func() {
		nums := extractNumbers("2 x 3.50 = 7.00")
		Expect(nums).To(HaveLen(3))
		Expect(nums[0].String()).To(Equal("2"))
		Expect(nums[1].String()).To(Equal("3.5"))
		Expect(nums[2].String()).To(Equal("7"))
	})

	It("returns an empty slice for text without digits", func() {
		Expect(extractNumbers("hello")).To(BeEmpty())
	})
})
