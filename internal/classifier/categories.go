package classifier

import "regexp"

// CategorySafe is the fall-through category when nothing matched.
const CategorySafe = "safe"

// CategoryBlacklisted tags entity-list fast-path hits.
const CategoryBlacklisted = "blacklisted"

// Category is one scam family with its keyword patterns. Declaration order
// breaks score ties, so the slice below is ordered, not a map.
type Category struct {
	Name     string
	Keywords []string
}

// Categories holds the known scam families. Keywords are lowercase literals
// matched as substrings of the lowercased text; mixed Thai/English reflects
// the traffic this service sees.
var Categories = []Category{
	{
		Name: "parcel",
		Keywords: []string{
			"พัสดุตกค้าง", "พัสดุของท่าน", "ภาษีนำเข้า", "ค่าธรรมเนียมศุลกากร",
			"kerry", "flash express", "ems",
			"parcel held", "customs fee", "delivery fee",
		},
	},
	{
		Name: "banking",
		Keywords: []string{
			"บัญชีถูกระงับ", "ยืนยันตัวตน", "รหัส otp", "อัพเดทข้อมูลบัญชี",
			"กดลิงก์ด้านล่าง", "บัตรของท่านถูกอายัด",
			"account suspended", "verify your account", "confirm your identity",
		},
	},
	{
		Name: "loan",
		Keywords: []string{
			"เงินกู้", "สินเชื่อ", "ดอกเบี้ยต่ำ", "อนุมัติไว", "วงเงินสูง",
			"ไม่ต้องค้ำประกัน",
			"easy loan", "low interest", "instant approval",
		},
	},
	{
		Name: "gambling",
		Keywords: []string{
			"หวยออนไลน์", "บาคาร่า", "สล็อต", "เว็บพนัน", "แทงบอล", "เครดิตฟรี",
			"casino", "jackpot", "free credit",
		},
	},
	{
		Name: "government",
		Keywords: []string{
			"กรมสรรพากร", "หมายจับ", "คดีฟอกเงิน", "ปปง", "เงินคืนภาษี",
			"ตำรวจไซเบอร์",
			"tax refund", "arrest warrant", "police case",
		},
	},
	{
		Name: "investment",
		Keywords: []string{
			"ลงทุนขั้นต่ำ", "ปันผลรายวัน", "กำไรการันตี", "ผู้เชี่ยวชาญเทรด",
			"คริปโต",
			"guaranteed return", "crypto profit", "trading expert",
		},
	},
	{
		Name: "job",
		Keywords: []string{
			"งานออนไลน์", "รายได้เสริม", "กดไลค์", "ทำงานที่บ้าน", "ค่าคอมมิชชั่น",
			"work from home", "easy money", "part time job",
		},
	},
}

// linkPattern finds link-like substrings that raise the evidence boost.
var linkPattern = regexp.MustCompile(`(?i)(https?://\S+|www\.\S+|bit\.ly/\S+|line\.me/\S+|[a-z0-9-]+\.(?:com|net|info|xyz|top|online|shop|app|cc)\S*)`)

// urgencyPhrases are pressure cues common to most scam families.
var urgencyPhrases = []string{
	"ด่วน", "ภายในวันนี้", "ทันที", "ครั้งสุดท้าย", "ก่อนถูกระงับ",
	"urgent", "immediately", "right now", "last chance", "within 24 hours",
}
