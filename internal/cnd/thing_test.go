package cnd

import (
	"testing"

	"github.com/ernie/cndtool/internal/bstream"
)

func freeThing(name string) *Thing {
	return &Thing{Header: ThingHeader{
		BaseName:  name,
		Name:      name,
		ThingType: ThingTypeFree,
	}}
}

func TestThingListRoundTripFreeThings(t *testing.T) {
	things := []*Thing{freeThing("crate01"), freeThing("crate02")}

	w := bstream.NewWriter()
	if err := WriteSectionThings(w, things); err != nil {
		t.Fatalf("WriteSectionThings: %v", err)
	}

	header := &Header{}
	header.Things.Num = uint32(len(things))
	got, err := ParseSectionThings(readerFor(w.Bytes()), header)
	if err != nil {
		t.Fatalf("ParseSectionThings: %v", err)
	}
	if len(got) != 2 || got[0].Header.Name != "crate01" || got[1].Header.Name != "crate02" {
		t.Fatalf("round-tripped things = %+v", got)
	}
	if got[0].Physics != nil || got[0].Actor != nil {
		t.Fatalf("free thing should carry no side-array payload, got %+v", got[0])
	}
}

func TestThingListRoundTripPhysicsAndActor(t *testing.T) {
	physicsThing := &Thing{
		Header: ThingHeader{
			BaseName:  "boulder",
			Name:      "boulder01",
			MoveType:  MoveTypePhysics,
			ThingType: ThingTypeFree,
		},
		Physics: &PhysicsInfo{Mass: 12.5, Gravity: 9.8},
	}
	actorThing := &Thing{
		Header: ThingHeader{
			BaseName:  "trooper",
			Name:      "trooper01",
			ThingType: ThingTypeActor,
		},
		Actor: &ActorInfo{},
	}
	things := []*Thing{physicsThing, actorThing}

	w := bstream.NewWriter()
	if err := WriteSectionThings(w, things); err != nil {
		t.Fatalf("WriteSectionThings: %v", err)
	}

	header := &Header{}
	header.Things.Num = uint32(len(things))
	got, err := ParseSectionThings(readerFor(w.Bytes()), header)
	if err != nil {
		t.Fatalf("ParseSectionThings: %v", err)
	}
	if got[0].Physics == nil || got[0].Physics.Mass != 12.5 {
		t.Fatalf("physics thing round trip = %+v", got[0])
	}
	if got[1].Actor == nil {
		t.Fatalf("actor thing round trip = %+v", got[1])
	}
}

func TestThingListSideArrayExhaustionRejected(t *testing.T) {
	// A header claims MoveTypePhysics but no PhysicsInfo is supplied:
	// writeThingList must refuse to produce a file that would desync the
	// reader's per-header dispatch from the physics side array (P5).
	bad := &Thing{Header: ThingHeader{Name: "ghost", MoveType: MoveTypePhysics}}

	w := bstream.NewWriter()
	if err := WriteSectionThings(w, []*Thing{bad}); err == nil {
		t.Fatal("expected an error for a physics-moveType thing with no PhysicsInfo")
	}
}
