package httpmiddleware

import "testing"

func TestSimpleTokenBucket_Exhausts(t *testing.T) {
	l := NewSimpleTokenBucket(3, 3)
	for i := 0; i < 3; i++ {
		if !l.allow("1.2.3.4") {
			t.Fatalf("request %d denied before capacity reached", i+1)
		}
	}
	if l.allow("1.2.3.4") {
		t.Fatal("request allowed past capacity")
	}
	// other clients keep their own bucket
	if !l.allow("5.6.7.8") {
		t.Fatal("fresh client denied")
	}
}
