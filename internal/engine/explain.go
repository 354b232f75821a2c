package engine

import (
	"fmt"

	"scamshield/internal/models"
)

// adviceByCategory maps the final category to the advice text returned to
// the user. Thai first because that is where the traffic comes from.
var adviceByCategory = map[string]string{
	"parcel":      "อย่าชำระค่าธรรมเนียมผ่านลิงก์ที่แนบมา ตรวจสอบเลขพัสดุกับผู้ให้บริการขนส่งโดยตรง",
	"banking":     "ธนาคารไม่ขอรหัส OTP หรือให้กดลิงก์ยืนยันตัวตนทางข้อความ อย่ากรอกข้อมูลใด ๆ",
	"loan":        "อย่าโอนค่าธรรมเนียมล่วงหน้าเพื่อแลกกับวงเงินกู้ สินเชื่อจริงไม่เก็บเงินก่อนอนุมัติ",
	"gambling":    "เว็บพนันออนไลน์ผิดกฎหมายและมักยึดเงินฝาก หลีกเลี่ยงการสมัครหรือเติมเงิน",
	"government":  "หน่วยงานราชการไม่แจ้งคดีหรือขอให้โอนเงินทางข้อความ ติดต่อหน่วยงานผ่านช่องทางทางการเท่านั้น",
	"investment":  "ผลตอบแทนการันตีสูงผิดปกติคือสัญญาณหลอกลวง ตรวจสอบใบอนุญาตกับ ก.ล.ต. ก่อนลงทุน",
	"job":         "งานที่ให้โอนเงินค้ำประกันหรือเติมเครดิตก่อนเริ่มงานคือการหลอกลวง",
	"blacklisted": "ข้อความนี้ตรงกับรายการหลอกลวงที่ยืนยันแล้ว อย่าโอนเงินหรือติดต่อกลับ",
	"parse_error": "ไม่สามารถยืนยันผลการตรวจสอบได้ โปรดใช้ความระมัดระวังเป็นพิเศษก่อนโอนเงิน",
	"safe":        "ไม่พบสัญญาณหลอกลวงที่ชัดเจน แต่ควรตรวจสอบตัวตนผู้ติดต่อก่อนโอนเงินเสมอ",
}

const defaultAdvice = "โปรดใช้ความระมัดระวัง อย่าโอนเงินหรือให้ข้อมูลส่วนตัวกับผู้ติดต่อที่ไม่รู้จัก"

// explain produces the reason and advice strings for a final outcome.
func explain(out models.Outcome) (reason, advice string) {
	advice, ok := adviceByCategory[out.Category]
	if !ok {
		advice = defaultAdvice
	}

	switch out.Origin {
	case models.OriginWhitelist:
		reason = "matched a trusted whitelist entry"
	case models.OriginBlacklist:
		reason = "matched a confirmed blacklist entry"
	case models.OriginCascade:
		reason = fmt.Sprintf("secondary classifier scored %.2f for category %q", out.RiskScore, out.Category)
	case models.OriginCrowd:
		reason = fmt.Sprintf("repeatedly confirmed as %q by independent reports", out.Category)
	default:
		if out.Category == "safe" {
			reason = fmt.Sprintf("keyword analysis found no scam indicators (score %.2f)", out.RiskScore)
		} else {
			reason = fmt.Sprintf("keyword analysis scored %.2f for category %q", out.RiskScore, out.Category)
		}
	}
	return reason, advice
}
