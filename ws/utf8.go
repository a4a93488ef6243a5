package ws

// utf8Validatorは、分割されたデータにまたがるUTF-8の検証状態を保持します。
type utf8Validator struct {
	sequenceInProgress      bool
	additionalBytesExpected int
	expectedValueMin        int
	currentDecodeBits       int
}

// validateは、bがそれまでのデータに続く正しいUTF-8であるかを検証します。
//
// endOfMessageの場合、符号化途中のシーケンスが残っていれば不正とし、状態をリセットします。
// サロゲート(U+D800-U+DFFF)、U+10FFFFを超える値、冗長な符号化は不正です。
func (v *utf8Validator) validate(b []byte, endOfMessage bool) bool {
	for _, c := range b {
		if !v.sequenceInProgress {
			switch {
			case c < 0x80:
				continue
			case c&0xC0 == 0x80:
				return false
			case c&0xE0 == 0xC0:
				v.additionalBytesExpected = 1
				v.currentDecodeBits = int(c & 0x1F)
				v.expectedValueMin = 0x80
			case c&0xF0 == 0xE0:
				v.additionalBytesExpected = 2
				v.currentDecodeBits = int(c & 0x0F)
				v.expectedValueMin = 0x800
			case c&0xF8 == 0xF0:
				v.additionalBytesExpected = 3
				v.currentDecodeBits = int(c & 0x07)
				v.expectedValueMin = 0x10000
			default:
				return false
			}
			v.sequenceInProgress = true
			continue
		}

		if c&0xC0 != 0x80 {
			return false
		}
		v.currentDecodeBits = v.currentDecodeBits<<6 | int(c&0x3F)
		v.additionalBytesExpected--

		// 途中までのビットでサロゲートと上限超過を検出します。
		if v.additionalBytesExpected == 1 && v.currentDecodeBits >= 0x360 && v.currentDecodeBits <= 0x37F {
			return false
		}
		if v.additionalBytesExpected == 2 && v.currentDecodeBits >= 0x110 {
			return false
		}
		if v.additionalBytesExpected == 0 {
			if v.currentDecodeBits < v.expectedValueMin {
				return false
			}
			v.sequenceInProgress = false
		}
	}
	if endOfMessage {
		inProgress := v.sequenceInProgress
		*v = utf8Validator{}
		return !inProgress
	}
	return true
}
