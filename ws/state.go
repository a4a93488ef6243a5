package ws

import (
	"fmt"
	"strings"
	"sync"

	"github.com/aptpod/wsproto-go/errors"
)

// Stateは、WebSocketコネクションの状態です。
type State uint8

const (
	StateConnecting    State = iota // 接続中
	StateOpen                       // 接続済み
	StateCloseSent                  // クローズフレーム送信済み
	StateCloseReceived              // クローズフレーム受信済み
	StateClosed                     // クローズハンドシェイク完了
	StateAborted                    // 中断
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "Connecting"
	case StateOpen:
		return "Open"
	case StateCloseSent:
		return "CloseSent"
	case StateCloseReceived:
		return "CloseReceived"
	case StateClosed:
		return "Closed"
	case StateAborted:
		return "Aborted"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

func (s State) isTerminal() bool {
	return s == StateClosed || s == StateAborted
}

// InvalidStateErrorは、現在の状態で受け付けられない操作を行った場合のエラーです。
//
// errors.Is(err, errors.ErrInvalidState) はtrueを返します。
type InvalidStateError struct {
	// Currentは、操作時の状態です。
	Current State
	// Acceptedは、操作を受け付ける状態の一覧です。
	Accepted []State
}

func (e *InvalidStateError) Error() string {
	accepted := make([]string, 0, len(e.Accepted))
	for _, s := range e.Accepted {
		accepted = append(accepted, s.String())
	}
	return fmt.Sprintf("connection is %v, expected one of [%s]", e.Current, strings.Join(accepted, ", "))
}

func (e *InvalidStateError) Unwrap() error {
	return errors.ErrInvalidState
}

type connState struct {
	sync.RWMutex
	current State

	closeSent     bool
	closeReceived bool

	closeStatus            CloseStatus
	hasCloseStatus         bool
	closeStatusDescription string

	done chan struct{}
}

func newConnState(initial State) *connState {
	return &connState{
		current: initial,
		done:    make(chan struct{}),
	}
}

func (s *connState) Current() State {
	s.RLock()
	defer s.RUnlock()
	return s.current
}

// checkは、現在の状態がacceptedのいずれかであることを確認します。
func (s *connState) check(accepted ...State) error {
	s.RLock()
	defer s.RUnlock()
	for _, a := range accepted {
		if s.current == a {
			return nil
		}
	}
	return &InvalidStateError{Current: s.current, Accepted: accepted}
}

func (s *connState) CloseSent() bool {
	s.RLock()
	defer s.RUnlock()
	return s.closeSent
}

func (s *connState) CloseReceived() bool {
	s.RLock()
	defer s.RUnlock()
	return s.closeReceived
}

// markCloseSentは、クローズフレームの送信を記録し、コネクションがクローズ状態になった場合にtrueを返します。
func (s *connState) markCloseSent() bool {
	s.Lock()
	defer s.Unlock()
	s.closeSent = true
	return s.advanceWithoutLock(StateCloseSent)
}

// markCloseReceivedは、クローズフレームの受信を記録し、コネクションがクローズ状態になった場合にtrueを返します。
func (s *connState) markCloseReceived(status CloseStatus, hasStatus bool, description string) bool {
	s.Lock()
	defer s.Unlock()
	s.closeReceived = true
	s.closeStatus = status
	s.hasCloseStatus = hasStatus
	s.closeStatusDescription = description
	return s.advanceWithoutLock(StateCloseReceived)
}

func (s *connState) advanceWithoutLock(next State) bool {
	if s.current.isTerminal() {
		return false
	}
	if s.closeSent && s.closeReceived {
		s.swapWithoutLock(StateClosed)
		return true
	}
	if s.current < next {
		s.swapWithoutLock(next)
	}
	return false
}

// abortは、コネクションを中断状態にし、状態が変化した場合にtrueを返します。
//
// 接続中の場合はクローズ状態になります。
func (s *connState) abort() bool {
	s.Lock()
	defer s.Unlock()
	switch s.current {
	case StateClosed, StateAborted:
		return false
	case StateConnecting:
		s.swapWithoutLock(StateClosed)
	default:
		s.swapWithoutLock(StateAborted)
	}
	return true
}

// toClosedは、中断されていなければクローズ状態にします。
func (s *connState) toClosed() {
	s.Lock()
	defer s.Unlock()
	if s.current.isTerminal() {
		return
	}
	s.swapWithoutLock(StateClosed)
}

func (s *connState) swapWithoutLock(next State) {
	s.current = next
	if next.isTerminal() {
		close(s.done)
	}
}

func (s *connState) Done() <-chan struct{} {
	return s.done
}

func (s *connState) CloseStatus() (CloseStatus, bool) {
	s.RLock()
	defer s.RUnlock()
	return s.closeStatus, s.hasCloseStatus
}

func (s *connState) CloseStatusDescription() string {
	s.RLock()
	defer s.RUnlock()
	return s.closeStatusDescription
}
