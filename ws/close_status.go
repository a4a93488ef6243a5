package ws

import (
	"fmt"

	"github.com/aptpod/wsproto-go/errors"
)

// CloseStatusは、クローズフレームで送受信するステータスコードです。
type CloseStatus uint16

// RFC 6455 Section 7.4.1 で定義されたステータスコードです。
const (
	CloseStatusNormalClosure       CloseStatus = 1000
	CloseStatusEndpointUnavailable CloseStatus = 1001
	CloseStatusProtocolError       CloseStatus = 1002
	CloseStatusInvalidMessageType  CloseStatus = 1003
	closeStatusReserved            CloseStatus = 1004
	CloseStatusEmpty               CloseStatus = 1005 // ステータスなし。送信には使用できません。
	CloseStatusAbnormalClosure     CloseStatus = 1006 // 異常切断。送信には使用できません。
	CloseStatusInvalidPayloadData  CloseStatus = 1007
	CloseStatusPolicyViolation     CloseStatus = 1008
	CloseStatusMessageTooBig       CloseStatus = 1009
	CloseStatusMandatoryExtension  CloseStatus = 1010
	CloseStatusInternalServerError CloseStatus = 1011
	CloseStatusTLSHandshakeFailure CloseStatus = 1015 // TLSハンドシェイク失敗。送信には使用できません。
)

func (s CloseStatus) String() string {
	switch s {
	case CloseStatusNormalClosure:
		return "NormalClosure"
	case CloseStatusEndpointUnavailable:
		return "EndpointUnavailable"
	case CloseStatusProtocolError:
		return "ProtocolError"
	case CloseStatusInvalidMessageType:
		return "InvalidMessageType"
	case CloseStatusEmpty:
		return "Empty"
	case CloseStatusAbnormalClosure:
		return "AbnormalClosure"
	case CloseStatusInvalidPayloadData:
		return "InvalidPayloadData"
	case CloseStatusPolicyViolation:
		return "PolicyViolation"
	case CloseStatusMessageTooBig:
		return "MessageTooBig"
	case CloseStatusMandatoryExtension:
		return "MandatoryExtension"
	case CloseStatusInternalServerError:
		return "InternalServerError"
	case CloseStatusTLSHandshakeFailure:
		return "TLSHandshakeFailure"
	}
	return fmt.Sprintf("CloseStatus(%d)", uint16(s))
}

// ValidateCloseStatusは、送信するクローズステータスとクローズ理由を検証します。
//
// 0-999、1004、1005、1006、1015、5000以上のステータスコードと、
// UTF-8で123バイトを超えるまたは不正なクローズ理由は ErrInvalidCloseStatus となります。
func ValidateCloseStatus(status CloseStatus, description string) error {
	switch {
	case status < 1000, status >= 5000:
		return errors.Errorf("status code %d is out of range: %w", uint16(status), errors.ErrInvalidCloseStatus)
	case status == closeStatusReserved,
		status == CloseStatusEmpty,
		status == CloseStatusAbnormalClosure,
		status == CloseStatusTLSHandshakeFailure:
		return errors.Errorf("status code %v is reserved: %w", status, errors.ErrInvalidCloseStatus)
	}
	if len(description) > maxCloseDescriptionLength {
		return errors.Errorf("description is %d bytes, must be at most %d bytes: %w", len(description), maxCloseDescriptionLength, errors.ErrInvalidCloseStatus)
	}
	var v utf8Validator
	if !v.validate([]byte(description), true) {
		return errors.Errorf("description is not valid UTF-8: %w", errors.ErrInvalidCloseStatus)
	}
	return nil
}

// 受信時に有効なステータスコードは 1000-1003、1007-1011、3000-4999 です。
func isValidReceivedCloseStatus(status CloseStatus) bool {
	switch {
	case status >= 1000 && status <= 1003:
		return true
	case status >= 1007 && status <= 1011:
		return true
	case status >= 3000 && status < 5000:
		return true
	}
	return false
}
