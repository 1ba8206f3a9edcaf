package orders

import "testing"

func TestHappyPathTransitions(t *testing.T) {
	path := []Status{StatusPending, StatusProcessing, StatusShipped, StatusDelivered}
	for i := 0; i < len(path)-1; i++ {
		if !CanTransition(path[i], path[i+1]) {
			t.Errorf("CanTransition(%s, %s) = false; want true", path[i], path[i+1])
		}
	}
}

func TestTerminalStates(t *testing.T) {
	for _, terminal := range []Status{StatusDelivered, StatusCancelled} {
		for _, to := range []Status{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled} {
			if CanTransition(terminal, to) {
				t.Errorf("CanTransition(%s, %s) = true; want false", terminal, to)
			}
		}
	}
}

func TestCancelFromNonTerminal(t *testing.T) {
	for _, from := range []Status{StatusPending, StatusProcessing, StatusShipped} {
		if !CanTransition(from, StatusCancelled) {
			t.Errorf("CanTransition(%s, cancelled) = false; want true", from)
		}
	}
}

func TestNoBackwardsTransitions(t *testing.T) {
	cases := [][2]Status{
		{StatusProcessing, StatusPending},
		{StatusShipped, StatusProcessing},
		{StatusDelivered, StatusProcessing},
		{StatusDelivered, StatusCancelled},
	}
	for _, c := range cases {
		if CanTransition(c[0], c[1]) {
			t.Errorf("CanTransition(%s, %s) = true; want false", c[0], c[1])
		}
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled} {
		if !ValidStatus(s) {
			t.Errorf("ValidStatus(%s) = false", s)
		}
	}
	if ValidStatus("refunded") {
		t.Error(`ValidStatus("refunded") = true; want false`)
	}
}
