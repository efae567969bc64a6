package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/mtovar/labsim/internal/ml"
	"github.com/mtovar/labsim/internal/rng"
)

func newTestKV(t *testing.T) *KV {
	t.Helper()
	kv := NewKV(filepath.Join(t.TempDir(), "labsim.db"))
	if err := kv.Init(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { kv.Close() })
	return kv
}

func TestKVPutGet(t *testing.T) {
	g := NewWithT(t)
	kv := newTestKV(t)
	ctx := context.Background()

	g.Expect(kv.Put(ctx, "pendulum/model", []byte("v1"))).To(Succeed())

	got, err := kv.Get(ctx, "pendulum/model")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(got).To(Equal([]byte("v1")))

	// later save overwrites
	g.Expect(kv.Put(ctx, "pendulum/model", []byte("v2"))).To(Succeed())
	got, err = kv.Get(ctx, "pendulum/model")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(got).To(Equal([]byte("v2")))
}

func TestKVMissReturnsNotFound(t *testing.T) {
	kv := newTestKV(t)

	_, err := kv.Get(context.Background(), "never-saved")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestModelRoundTrip(t *testing.T) {
	g := NewWithT(t)
	kv := newTestKV(t)
	ctx := context.Background()

	net, err := ml.NewNetwork(ml.Arch{Sizes: []int{2, 6, 1}, Output: ml.Linear}, rng.New(4))
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(kv.SaveModel(ctx, "pendulum", net)).To(Succeed())

	back, err := kv.LoadModel(ctx, "pendulum")
	g.Expect(err).NotTo(HaveOccurred())

	in := []float64{0.1, 0.2}
	g.Expect(back.Forward(in)).To(Equal(net.Forward(in)))
}

func TestNormalizationRoundTrip(t *testing.T) {
	g := NewWithT(t)
	kv := newTestKV(t)
	ctx := context.Background()

	norm, err := ml.FitNormalization([]string{"a", "b"}, [][]float64{{1, 2}, {3, 4}, {5, 6}})
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(kv.SaveNormalization(ctx, "tomato", norm)).To(Succeed())

	back, err := kv.LoadNormalization(ctx, "tomato")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(back.Mean).To(Equal(norm.Mean))
	g.Expect(back.Std).To(Equal(norm.Std))
}

func TestCorruptDistinctFromMissing(t *testing.T) {
	kv := newTestKV(t)
	ctx := context.Background()

	if err := kv.Put(ctx, "chem/model", []byte("{broken")); err != nil {
		t.Fatal(err)
	}
	_, err := kv.LoadModel(ctx, "chem")
	if !errors.Is(err, ErrCorrupt) {
		t.Errorf("expected ErrCorrupt, got %v", err)
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("corrupt payload must not be reported as not-found")
	}

	if err := kv.Put(ctx, "chem/norm", []byte(`{"mean":null,"std":null}`)); err != nil {
		t.Fatal(err)
	}
	_, err = kv.LoadNormalization(ctx, "chem")
	if !errors.Is(err, ErrCorrupt) {
		t.Errorf("expected ErrCorrupt for empty record, got %v", err)
	}
}

func TestRunsSaveListLoad(t *testing.T) {
	g := NewWithT(t)
	runs := NewRuns(t.TempDir())
	g.Expect(runs.Init()).To(Succeed())

	cols := []string{"t", "theta", "omega"}
	rows := [][]float64{{0, 0.5, 0}, {0.01, 0.4999, -0.05}}
	id, err := runs.Save("pendulum", map[string]float64{"length": 1}, cols, rows)
	g.Expect(err).NotTo(HaveOccurred())

	list, err := runs.List()
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(list).To(HaveLen(1))
	g.Expect(list[0].Domain).To(Equal("pendulum"))
	g.Expect(list[0].Rows).To(Equal(2))

	gotCols, gotRows, err := runs.LoadSeries(id)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(gotCols).To(Equal(cols))
	g.Expect(gotRows).To(HaveLen(2))
	g.Expect(gotRows[0][1]).To(BeNumerically("~", 0.5, 1e-9))
}
