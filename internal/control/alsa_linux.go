//go:build linux && cgo

package control

/*
#cgo LDFLAGS: -lasound
#include <alsa/asoundlib.h>
#include <stdlib.h>

static void fill_id(snd_ctl_elem_id_t *id, int iface, const char *name, unsigned int index) {
    snd_ctl_elem_id_set_interface(id, iface);
    snd_ctl_elem_id_set_name(id, name);
    snd_ctl_elem_id_set_index(id, index);
}

static int elem_info(snd_ctl_t *ctl, int iface, const char *name, unsigned int index,
                     int *type, unsigned int *count, long *min, long *max, unsigned int *items) {
    snd_ctl_elem_info_t *info;
    snd_ctl_elem_id_t *id;
    int err;

    snd_ctl_elem_id_alloca(&id);
    snd_ctl_elem_info_alloca(&info);
    fill_id(id, iface, name, index);
    snd_ctl_elem_info_set_id(info, id);
    err = snd_ctl_elem_info(ctl, info);
    if (err < 0) return err;

    *type = snd_ctl_elem_info_get_type(info);
    *count = snd_ctl_elem_info_get_count(info);
    *min = 0;
    *max = 0;
    *items = 0;
    switch (*type) {
    case SND_CTL_ELEM_TYPE_INTEGER:
        *min = snd_ctl_elem_info_get_min(info);
        *max = snd_ctl_elem_info_get_max(info);
        break;
    case SND_CTL_ELEM_TYPE_BOOLEAN:
        *max = 1;
        break;
    case SND_CTL_ELEM_TYPE_ENUMERATED:
        *items = snd_ctl_elem_info_get_items(info);
        break;
    }
    return 0;
}

static int elem_item_name(snd_ctl_t *ctl, int iface, const char *name, unsigned int index,
                          unsigned int item, char *buf, size_t len) {
    snd_ctl_elem_info_t *info;
    snd_ctl_elem_id_t *id;
    int err;

    snd_ctl_elem_id_alloca(&id);
    snd_ctl_elem_info_alloca(&info);
    fill_id(id, iface, name, index);
    snd_ctl_elem_info_set_id(info, id);
    snd_ctl_elem_info_set_item(info, item);
    err = snd_ctl_elem_info(ctl, info);
    if (err < 0) return err;
    snprintf(buf, len, "%s", snd_ctl_elem_info_get_item_name(info));
    return 0;
}

static int elem_read(snd_ctl_t *ctl, int iface, const char *name, unsigned int index,
                     int type, long *values, unsigned int count) {
    snd_ctl_elem_value_t *val;
    unsigned int i;
    int err;

    snd_ctl_elem_value_alloca(&val);
    snd_ctl_elem_value_set_interface(val, iface);
    snd_ctl_elem_value_set_name(val, name);
    snd_ctl_elem_value_set_index(val, index);
    err = snd_ctl_elem_read(ctl, val);
    if (err < 0) return err;
    for (i = 0; i < count; i++) {
        switch (type) {
        case SND_CTL_ELEM_TYPE_BOOLEAN:
            values[i] = snd_ctl_elem_value_get_boolean(val, i);
            break;
        case SND_CTL_ELEM_TYPE_ENUMERATED:
            values[i] = snd_ctl_elem_value_get_enumerated(val, i);
            break;
        default:
            values[i] = snd_ctl_elem_value_get_integer(val, i);
        }
    }
    return 0;
}

static int elem_write(snd_ctl_t *ctl, int iface, const char *name, unsigned int index,
                      int type, long *values, unsigned int count) {
    snd_ctl_elem_value_t *val;
    unsigned int i;

    snd_ctl_elem_value_alloca(&val);
    snd_ctl_elem_value_set_interface(val, iface);
    snd_ctl_elem_value_set_name(val, name);
    snd_ctl_elem_value_set_index(val, index);
    for (i = 0; i < count; i++) {
        switch (type) {
        case SND_CTL_ELEM_TYPE_BOOLEAN:
            snd_ctl_elem_value_set_boolean(val, i, values[i]);
            break;
        case SND_CTL_ELEM_TYPE_ENUMERATED:
            snd_ctl_elem_value_set_enumerated(val, i, values[i]);
            break;
        default:
            snd_ctl_elem_value_set_integer(val, i, values[i]);
        }
    }
    return snd_ctl_elem_write(ctl, val);
}

static int elem_db_range(snd_ctl_t *ctl, int iface, const char *name, unsigned int index,
                         long *min, long *max) {
    snd_ctl_elem_id_t *id;
    snd_ctl_elem_id_alloca(&id);
    fill_id(id, iface, name, index);
    return snd_ctl_get_dB_range(ctl, id, min, max);
}

static int elem_to_db(snd_ctl_t *ctl, int iface, const char *name, unsigned int index,
                      long raw, long *db) {
    snd_ctl_elem_id_t *id;
    snd_ctl_elem_id_alloca(&id);
    fill_id(id, iface, name, index);
    return snd_ctl_convert_to_dB(ctl, id, raw, db);
}

static int elem_from_db(snd_ctl_t *ctl, int iface, const char *name, unsigned int index,
                        long db, long *raw, int dir) {
    snd_ctl_elem_id_t *id;
    snd_ctl_elem_id_alloca(&id);
    fill_id(id, iface, name, index);
    return snd_ctl_convert_from_dB(ctl, id, db, raw, dir);
}
*/
import "C"

import (
	"fmt"
	"strconv"
	"strings"
	"unsafe"
)

// ALSACard is the control interface of a real card, opened through libasound
type ALSACard struct {
	ctl    *C.snd_ctl_t
	device string
	names  map[Kind]*C.char
	ifaces map[Kind]C.int
	elems  map[ID]elemMeta
}

type elemMeta struct {
	typ   C.int
	count int
}

// DeviceName turns a card number or name into an ALSA control device
// name: "0" becomes "hw:0", anything else is passed through.
func DeviceName(card string) string {
	if card == "" {
		return "hw:0"
	}
	if _, err := strconv.Atoi(card); err == nil || !strings.Contains(card, ":") {
		return "hw:" + card
	}
	return card
}

// OpenALSA opens the control interface of the given card
func OpenALSA(card string) (*ALSACard, error) {
	device := DeviceName(card)
	cdev := C.CString(device)
	defer C.free(unsafe.Pointer(cdev))

	var ctl *C.snd_ctl_t
	if rc := C.snd_ctl_open(&ctl, cdev, 0); rc < 0 {
		return nil, fmt.Errorf("open %s: %s", device, alsaError(rc))
	}

	a := &ALSACard{
		ctl:    ctl,
		device: device,
		names:  make(map[Kind]*C.char, len(descriptors)),
		ifaces: make(map[Kind]C.int, len(descriptors)),
		elems:  make(map[ID]elemMeta),
	}
	for kind, d := range descriptors {
		a.names[kind] = C.CString(d.name)
		a.ifaces[kind] = cIface(d.iface)
	}
	return a, nil
}

// Device returns the ALSA device name the card was opened with
func (a *ALSACard) Device() string {
	return a.device
}

func cIface(i Interface) C.int {
	if i == IfacePCM {
		return C.SND_CTL_ELEM_IFACE_PCM
	}
	return C.SND_CTL_ELEM_IFACE_MIXER
}

func alsaError(rc C.int) string {
	return C.GoString(C.snd_strerror(rc))
}

func (a *ALSACard) info(kind Kind, iface C.int, index int) (Info, C.int, error) {
	var (
		typ        C.int
		count      C.uint
		lo, hi     C.long
		itemsCount C.uint
	)
	rc := C.elem_info(a.ctl, iface, a.names[kind], C.uint(index), &typ, &count, &lo, &hi, &itemsCount)
	if rc < 0 {
		return Info{}, 0, fmt.Errorf("%s", alsaError(rc))
	}

	info := Info{Count: int(count), Min: int(lo), Max: int(hi)}
	switch typ {
	case C.SND_CTL_ELEM_TYPE_BOOLEAN:
		info.Type = TypeBoolean
	case C.SND_CTL_ELEM_TYPE_ENUMERATED:
		info.Type = TypeEnumerated
		buf := make([]byte, 64)
		for item := 0; item < int(itemsCount); item++ {
			rc := C.elem_item_name(a.ctl, iface, a.names[kind], C.uint(index), C.uint(item),
				(*C.char)(unsafe.Pointer(&buf[0])), C.size_t(len(buf)))
			if rc < 0 {
				return Info{}, 0, fmt.Errorf("item %d: %s", item, alsaError(rc))
			}
			info.Items = append(info.Items, C.GoString((*C.char)(unsafe.Pointer(&buf[0]))))
		}
	case C.SND_CTL_ELEM_TYPE_INTEGER:
		info.Type = TypeInteger
	default:
		return Info{}, 0, fmt.Errorf("unsupported element type %d", int(typ))
	}
	return info, typ, nil
}

// Info implements Hardware. The peak meter lives on the PCM interface;
// older drivers registered it on the mixer interface instead.
func (a *ALSACard) Info(id ID) (Info, error) {
	info, typ, err := a.info(id.Kind, a.ifaces[id.Kind], id.Index)
	if err != nil && id.Kind == MultiTrackPeak {
		info, typ, err = a.info(id.Kind, C.SND_CTL_ELEM_IFACE_MIXER, id.Index)
		if err == nil {
			a.ifaces[id.Kind] = C.SND_CTL_ELEM_IFACE_MIXER
		}
	}
	if err != nil {
		return Info{}, fmt.Errorf("%s: %w", id, err)
	}
	a.elems[id] = elemMeta{typ: typ, count: info.Count}
	return info, nil
}

func (a *ALSACard) meta(id ID) (elemMeta, error) {
	if m, ok := a.elems[id]; ok {
		return m, nil
	}
	if _, err := a.Info(id); err != nil {
		return elemMeta{}, err
	}
	return a.elems[id], nil
}

// Read implements Hardware
func (a *ALSACard) Read(id ID) ([]int, error) {
	m, err := a.meta(id)
	if err != nil {
		return nil, err
	}
	buf := make([]C.long, max(m.count, 1))
	rc := C.elem_read(a.ctl, a.ifaces[id.Kind], a.names[id.Kind], C.uint(id.Index), m.typ, &buf[0], C.uint(m.count))
	if rc < 0 {
		return nil, fmt.Errorf("%s", alsaError(rc))
	}
	values := make([]int, m.count)
	for i := range values {
		values[i] = int(buf[i])
	}
	return values, nil
}

// Write implements Hardware
func (a *ALSACard) Write(id ID, values []int) error {
	if len(values) == 0 {
		return nil
	}
	m, err := a.meta(id)
	if err != nil {
		return err
	}
	buf := make([]C.long, len(values))
	for i, v := range values {
		buf[i] = C.long(v)
	}
	rc := C.elem_write(a.ctl, a.ifaces[id.Kind], a.names[id.Kind], C.uint(id.Index), m.typ, &buf[0], C.uint(len(buf)))
	if rc < 0 {
		return fmt.Errorf("%s", alsaError(rc))
	}
	return nil
}

// DBRange implements Hardware
func (a *ALSACard) DBRange(id ID) (int, int, error) {
	var lo, hi C.long
	rc := C.elem_db_range(a.ctl, a.ifaces[id.Kind], a.names[id.Kind], C.uint(id.Index), &lo, &hi)
	if rc < 0 {
		return 0, 0, fmt.Errorf("%s", alsaError(rc))
	}
	return int(lo), int(hi), nil
}

// ToDB implements Hardware
func (a *ALSACard) ToDB(id ID, raw int) (int, error) {
	var db C.long
	rc := C.elem_to_db(a.ctl, a.ifaces[id.Kind], a.names[id.Kind], C.uint(id.Index), C.long(raw), &db)
	if rc < 0 {
		return 0, fmt.Errorf("%s", alsaError(rc))
	}
	return int(db), nil
}

// FromDB implements Hardware
func (a *ALSACard) FromDB(id ID, cdb int, dir int) (int, error) {
	var raw C.long
	rc := C.elem_from_db(a.ctl, a.ifaces[id.Kind], a.names[id.Kind], C.uint(id.Index), C.long(cdb), &raw, C.int(dir))
	if rc < 0 {
		return 0, fmt.Errorf("%s", alsaError(rc))
	}
	return int(raw), nil
}

// Close implements Hardware
func (a *ALSACard) Close() error {
	for _, name := range a.names {
		C.free(unsafe.Pointer(name))
	}
	a.names = nil
	if a.ctl == nil {
		return nil
	}
	rc := C.snd_ctl_close(a.ctl)
	a.ctl = nil
	if rc < 0 {
		return fmt.Errorf("close %s: %s", a.device, alsaError(rc))
	}
	return nil
}
