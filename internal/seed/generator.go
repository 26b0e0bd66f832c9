package seed

import (
	"math/rand/v2"

	"github.com/okian/classmates/internal/domain/model"
)

// jitter is the maximum offset, in degrees, applied around a city centre.
const jitter = 0.05

type city struct {
	name    string
	country string
	lat     float64
	lng     float64
}

var cities = []city{
	{"北京", "中国", 39.9042, 116.4074},
	{"上海", "中国", 31.2304, 121.4737},
	{"广州", "中国", 23.1291, 113.2644},
	{"深圳", "中国", 22.5431, 114.0579},
	{"杭州", "中国", 30.2741, 120.1551},
	{"成都", "中国", 30.5728, 104.0668},
	{"武汉", "中国", 30.5928, 114.3055},
	{"西安", "中国", 34.3416, 108.9398},
	{"南京", "中国", 32.0603, 118.7969},
	{"天津", "中国", 39.3434, 117.3616},
	{"香港", "中国", 22.3193, 114.1694},
	{"东京", "日本", 35.6762, 139.6503},
	{"首尔", "韩国", 37.5665, 126.9780},
	{"新加坡", "新加坡", 1.3521, 103.8198},
	{"纽约", "美国", 40.7128, -74.0060},
	{"旧金山", "美国", 37.7749, -122.4194},
	{"伦敦", "英国", 51.5074, -0.1278},
	{"悉尼", "澳大利亚", -33.8688, 151.2093},
}

var (
	surnames = []string{"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴", "徐", "孙"}
	given    = []string{"伟", "芳", "娜", "敏", "静", "磊", "洋", "勇", "艳", "杰", "涛", "明", "超", "秀英", "晓东", "子涵"}
)

// generator produces random classmates located around real cities.
type generator struct {
	rnd *rand.Rand
}

func newGenerator(seed uint64) *generator {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &generator{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (g *generator) person() model.Person {
	c := cities[g.rnd.IntN(len(cities))]
	return model.Person{
		Name:    surnames[g.rnd.IntN(len(surnames))] + given[g.rnd.IntN(len(given))],
		City:    c.name,
		Country: c.country,
		Location: &model.Location{
			Lat: c.lat + (g.rnd.Float64()*2-1)*jitter,
			Lng: c.lng + (g.rnd.Float64()*2-1)*jitter,
		},
	}
}

// Generate returns n random classmates. The same non-zero seed always yields
// the same roster.
func Generate(n int, seed uint64) []model.Person {
	if n <= 0 {
		return nil
	}
	g := newGenerator(seed)
	out := make([]model.Person, n)
	for i := range out {
		out[i] = g.person()
	}
	return out
}
